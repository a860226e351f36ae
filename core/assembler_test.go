package orchestration

import "testing"

func TestAssemblerConcatenatesFragmentsInOrder(t *testing.T) {
	a := newAssembler()
	fragments := []string{`{"campa`, `ignId`, `":`, `4`, `2}`}
	for _, f := range fragments {
		a.appendFragment("fc_1", "campaign_total", f)
	}

	call, ok := a.complete("fc_1", "")
	if !ok {
		t.Fatalf("expected completion to produce a call")
	}
	if call.Arguments != `{"campaignId":42}` {
		t.Fatalf("unexpected arguments: %q", call.Arguments)
	}
	if call.Name != "campaign_total" {
		t.Fatalf("expected name from fragments, got %q", call.Name)
	}
}

func TestAssemblerLaterFragmentNameOverwrites(t *testing.T) {
	a := newAssembler()
	a.appendFragment("fc_1", "campaign_total", `{`)
	a.appendFragment("fc_1", "donor_total", `}`)
	a.appendFragment("fc_1", "", "")

	call, ok := a.complete("fc_1", "")
	if !ok {
		t.Fatalf("expected completion to produce a call")
	}
	if call.Name != "donor_total" {
		t.Fatalf("expected the latest named fragment to win, got %q", call.Name)
	}
}

func TestAssemblerCompletionWithoutFragments(t *testing.T) {
	a := newAssembler()

	call, ok := a.complete("fc_1", "end_call")
	if !ok {
		t.Fatalf("expected completion to produce a call")
	}
	if call.Name != "end_call" {
		t.Fatalf("expected name from the completion event, got %q", call.Name)
	}
	if call.Arguments != "{}" {
		t.Fatalf("expected empty argument structure, got %q", call.Arguments)
	}
}

func TestAssemblerInvalidArgumentsDegradeToEmpty(t *testing.T) {
	a := newAssembler()
	a.appendFragment("fc_1", "add_donation", `{"amount":`)

	call, ok := a.complete("fc_1", "add_donation")
	if !ok {
		t.Fatalf("expected completion to produce a call")
	}
	if call.Arguments != "{}" {
		t.Fatalf("expected empty argument structure, got %q", call.Arguments)
	}
}

func TestAssemblerDuplicateCompletionIsNoOp(t *testing.T) {
	a := newAssembler()
	a.appendFragment("fc_1", "campaign_total", `{}`)

	if _, ok := a.complete("fc_1", ""); !ok {
		t.Fatalf("expected first completion to produce a call")
	}
	if _, ok := a.complete("fc_1", ""); ok {
		t.Fatalf("expected duplicate completion to be a no-op")
	}
}

func TestAssemblerKeepsInvocationsSeparate(t *testing.T) {
	a := newAssembler()
	a.appendFragment("fc_1", "campaign_total", `{"a"`)
	a.appendFragment("fc_2", "donor_total", `{"b"`)
	a.appendFragment("fc_1", "", `:1}`)
	a.appendFragment("fc_2", "", `:2}`)

	first, _ := a.complete("fc_1", "")
	second, _ := a.complete("fc_2", "")
	if first.Arguments != `{"a":1}` || first.Name != "campaign_total" {
		t.Fatalf("unexpected first call: %+v", first)
	}
	if second.Arguments != `{"b":2}` || second.Name != "donor_total" {
		t.Fatalf("unexpected second call: %+v", second)
	}
}
