package visual

import (
	"reflect"
	"testing"
)

func TestAnalyze_ParabolaYieldsThreeRequirements(t *testing.T) {
	a := NewAnalyzer()

	decision := a.Analyze("show me a parabola", "")
	if !decision.ShouldGenerate {
		t.Fatal("expected ShouldGenerate=true for parabola request")
	}
	if decision.ContentType != "parabola" {
		t.Errorf("ContentType = %q, want 'parabola'", decision.ContentType)
	}
	if len(decision.Requirements) != 3 {
		t.Fatalf("expected 3 requirements, got %d", len(decision.Requirements))
	}

	wantIDs := []string{"parabola-basic", "parabola-inverted", "parabola-shifted"}
	wantPositions := []int{80, 200, 320}
	for i, req := range decision.Requirements {
		if req.ID != wantIDs[i] {
			t.Errorf("requirement[%d].ID = %q, want %q", i, req.ID, wantIDs[i])
		}
		if req.Position != wantPositions[i] {
			t.Errorf("requirement[%d].Position = %d, want %d", i, req.Position, wantPositions[i])
		}
		if req.CoinCost != UnitCoinCost {
			t.Errorf("requirement[%d].CoinCost = %d, want %d", i, req.CoinCost, UnitCoinCost)
		}
	}
	if decision.TotalCoinCost != 3*UnitCoinCost {
		t.Errorf("TotalCoinCost = %d, want %d", decision.TotalCoinCost, 3*UnitCoinCost)
	}
}

func TestAnalyze_SineWaveYieldsTwoRequirements(t *testing.T) {
	a := NewAnalyzer()

	decision := a.Analyze("Can you draw a sine wave for me?", "")
	if !decision.ShouldGenerate {
		t.Fatal("expected ShouldGenerate=true for sine wave request")
	}
	if len(decision.Requirements) != 2 {
		t.Fatalf("expected 2 requirements, got %d", len(decision.Requirements))
	}
	if decision.Requirements[0].ID != "sine-wave" || decision.Requirements[1].ID != "cosine-wave" {
		t.Errorf("requirement IDs = %q/%q, want sine-wave/cosine-wave",
			decision.Requirements[0].ID, decision.Requirements[1].ID)
	}
}

func TestAnalyze_Deterministic(t *testing.T) {
	a := NewAnalyzer()

	first := a.Analyze("show me a parabola", "")
	for i := 0; i < 5; i++ {
		again := a.Analyze("show me a parabola", "")
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs:\nfirst: %+v\nagain: %+v", i, first, again)
		}
	}
}

func TestAnalyze_NoKeywordsNoGeneration(t *testing.T) {
	a := NewAnalyzer()

	decision := a.Analyze("what is the capital of France?", "")
	if decision.ShouldGenerate {
		t.Errorf("expected ShouldGenerate=false, got %+v", decision)
	}
	if len(decision.Requirements) != 0 || decision.TotalCoinCost != 0 {
		t.Errorf("expected empty decision, got %+v", decision)
	}
}

func TestAnalyze_LinearEquation(t *testing.T) {
	a := NewAnalyzer()

	decision := a.Analyze("graph the linear equation y = 2x + 1", "")
	if !decision.ShouldGenerate || len(decision.Requirements) != 1 {
		t.Fatalf("expected 1 requirement, got %+v", decision)
	}
	if decision.Requirements[0].ID != "linear-basic" || decision.Requirements[0].Position != 120 {
		t.Errorf("unexpected requirement: %+v", decision.Requirements[0])
	}
}

func TestAnalyze_ChartPatternsGetDistinctEvenPositions(t *testing.T) {
	a := NewAnalyzer()

	decision := a.Analyze("compare a bar chart and a pie chart of sales", "")
	if !decision.ShouldGenerate {
		t.Fatal("expected chart request to generate")
	}
	if len(decision.Requirements) != 2 {
		t.Fatalf("expected 2 requirements (bar + pie), got %d", len(decision.Requirements))
	}
	p0, p1 := decision.Requirements[0].Position, decision.Requirements[1].Position
	if p0 <= 0 || p1 <= p0 {
		t.Errorf("positions not ascending and positive: %d, %d", p0, p1)
	}
}

func TestAnalyze_GenericFallbackFixedPosition(t *testing.T) {
	a := NewAnalyzer()

	decision := a.Analyze("illustrate the water cycle", "")
	if !decision.ShouldGenerate || len(decision.Requirements) != 1 {
		t.Fatalf("expected 1 generic requirement, got %+v", decision)
	}
	if decision.Requirements[0].Position != genericPosition {
		t.Errorf("generic position = %d, want %d", decision.Requirements[0].Position, genericPosition)
	}
}

func TestAnalyze_PartialResponseTriggersRules(t *testing.T) {
	a := NewAnalyzer()

	// Keyword lives in the partial AI response, not the user message.
	decision := a.Analyze("explain this concept", "here is a diagram of the system architecture")
	if !decision.ShouldGenerate {
		t.Errorf("expected partial response keywords to trigger generation, got %+v", decision)
	}
}

func TestEstimatePositions(t *testing.T) {
	tests := []struct {
		length int
		count  int
		want   []int
	}{
		{600, 0, nil},
		{600, 1, []int{300}},
		{600, 2, []int{200, 400}},
		{600, 3, []int{150, 300, 450}},
	}
	for _, tt := range tests {
		if got := EstimatePositions(tt.length, tt.count); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("EstimatePositions(%d, %d) = %v, want %v", tt.length, tt.count, got, tt.want)
		}
	}
}
