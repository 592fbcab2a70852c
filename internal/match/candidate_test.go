package match

import (
	"reflect"
	"testing"
)

func TestRankCandidates(t *testing.T) {
	int64Type := reflect.TypeFor[int64]()

	target := Named{Name: "CustomerID", Type: int64Type}
	sources := []Named{
		{Name: "CustomerName", Type: reflect.TypeFor[string]()},
		{Name: "customer_id", Type: reflect.TypeFor[int]()},
		{Name: "ID", Type: int64Type},
		{Name: "CustomerID", Type: int64Type},
	}

	candidates := RankCandidates(target, sources)

	if len(candidates) != 4 {
		t.Fatalf("Expected 4 candidates, got %d", len(candidates))
	}

	// Best match should be "CustomerID" (exact match)
	if candidates[0].Source.Name != "CustomerID" {
		t.Errorf("Expected best match to be 'CustomerID', got '%s'", candidates[0].Source.Name)
	}

	if candidates[0].CombinedScore < 0.9 {
		t.Errorf("Expected high score for exact match, got %f", candidates[0].CombinedScore)
	}

	// Second best should be "customer_id" (same name after normalization)
	if candidates[1].Source.Name != "customer_id" {
		t.Errorf("Expected second match to be 'customer_id', got '%s'", candidates[1].Source.Name)
	}
}

func TestCandidateList_Top(t *testing.T) {
	candidates := CandidateList{
		{Source: Named{Name: "A"}, CombinedScore: 0.9},
		{Source: Named{Name: "B"}, CombinedScore: 0.8},
		{Source: Named{Name: "C"}, CombinedScore: 0.7},
	}

	if top2 := candidates.Top(2); len(top2) != 2 {
		t.Errorf("Expected 2 candidates, got %d", len(top2))
	}

	// Request more than available
	if top10 := candidates.Top(10); len(top10) != 3 {
		t.Errorf("Expected 3 candidates (all), got %d", len(top10))
	}

	if best := candidates.Best(); best == nil || best.Source.Name != "A" {
		t.Errorf("Expected best candidate A, got %v", best)
	}

	if best := (CandidateList{}).Best(); best != nil {
		t.Errorf("Expected no best candidate, got %v", best)
	}
}

func TestCandidateList_AboveThreshold(t *testing.T) {
	candidates := CandidateList{
		{Source: Named{Name: "A"}, CombinedScore: 0.9},
		{Source: Named{Name: "B"}, CombinedScore: 0.7},
		{Source: Named{Name: "C"}, CombinedScore: 0.5},
		{Source: Named{Name: "D"}, CombinedScore: 0.3},
	}

	above := candidates.AboveThreshold(0.6)
	if names := above.Names(); len(names) != 2 || names[0] != "A" || names[1] != "B" {
		t.Errorf("Expected [A B] above 0.6, got %v", names)
	}
}

func TestCandidateList_TieBreak(t *testing.T) {
	candidates := RankCandidates(
		Named{Name: "Total", Type: reflect.TypeFor[int]()},
		[]Named{
			{Name: "Totak", Type: reflect.TypeFor[int]()},
			{Name: "Totaj", Type: reflect.TypeFor[int]()},
		},
	)

	// equal scores fall back to source name order
	if names := candidates.Names(); names[0] != "Totaj" || names[1] != "Totak" {
		t.Errorf("Expected [Totaj Totak], got %v", names)
	}
}
