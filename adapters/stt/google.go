// Package stt transcribes uploaded audio with word-level timings.
package stt

import (
	"context"
	"fmt"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"

	"github.com/Aadiprofessional/matrixai-stream/domain/entities"
	"github.com/Aadiprofessional/matrixai-stream/domain/repositories"
)

// GoogleSpeechToText implements SpeechToText for Google Cloud. Recognition
// runs in batch mode with word time offsets enabled, since the word timing
// table is what the rest of the pipeline consumes.
type GoogleSpeechToText struct{}

var _ repositories.SpeechToText = (*GoogleSpeechToText)(nil)

// TranscribeAudio converts audio data to a time-ordered word list.
func (g *GoogleSpeechToText) TranscribeAudio(ctx context.Context, audioData []byte, config repositories.AudioConfig) ([]entities.WordRecord, error) {
	if len(audioData) == 0 {
		return nil, fmt.Errorf("no audio data received")
	}

	client, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}
	defer client.Close()

	encoding, err := getAudioEncoding(config.Encoding)
	if err != nil {
		return nil, err
	}

	resp, err := client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   encoding,
			SampleRateHertz:            int32(config.SampleRate),
			LanguageCode:               config.Language,
			EnableWordTimeOffsets:      true,
			EnableAutomaticPunctuation: true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audioData},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to recognize audio: %w", err)
	}

	var words []entities.WordRecord
	for _, result := range resp.Results {
		if len(result.Alternatives) == 0 {
			continue
		}
		best := result.Alternatives[0]
		for _, w := range best.Words {
			words = append(words, entities.WordRecord{
				Word:           w.Word,
				PunctuatedWord: w.Word,
				Start:          w.StartTime.AsDuration().Seconds(),
				End:            w.EndTime.AsDuration().Seconds(),
				Confidence:     float64(best.Confidence),
			})
		}
	}

	if len(words) == 0 {
		return nil, fmt.Errorf("no speech detected in audio")
	}
	return words, nil
}

// getAudioEncoding converts string encoding to Google Speech API enum
func getAudioEncoding(encoding string) (speechpb.RecognitionConfig_AudioEncoding, error) {
	switch encoding {
	case "WAV", "LINEAR16":
		return speechpb.RecognitionConfig_LINEAR16, nil
	case "FLAC":
		return speechpb.RecognitionConfig_FLAC, nil
	case "MULAW":
		return speechpb.RecognitionConfig_MULAW, nil
	case "AMR":
		return speechpb.RecognitionConfig_AMR, nil
	case "OGG_OPUS":
		return speechpb.RecognitionConfig_OGG_OPUS, nil
	case "MP3":
		return speechpb.RecognitionConfig_MP3, nil
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED, fmt.Errorf("unsupported audio encoding: %s", encoding)
	}
}
