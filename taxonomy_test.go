package cloudpay

import (
	"sync"
	"testing"
)

func TestKindForStatus(t *testing.T) {
	tests := []struct {
		status int
		name   string
	}{
		{300, "MultipleChoices"},
		{401, "Unauthorized"},
		{404, "NotFound"},
		{418, "ImATeapot"},
		{500, "InternalServerError"},
		{510, "NotExtended"},
	}

	for _, tt := range tests {
		kind, ok := KindForStatus(tt.status)
		if !ok {
			t.Errorf("Expected kind for %d", tt.status)
			continue
		}
		if kind.Name() != tt.name || kind.Code() != tt.status || kind.Family() != FamilyHTTP {
			t.Errorf("Expected %s/%d/http, got %s/%d/%s", tt.name, tt.status, kind.Name(), kind.Code(), kind.Family())
		}
	}

	if _, ok := KindForStatus(599); ok {
		t.Error("Expected no fixed kind for 599")
	}
	if _, ok := KindForStatus(200); ok {
		t.Error("Expected no kind for 200")
	}
}

func TestFixedReasonCodes(t *testing.T) {
	kind, ok := LookupReasonCode(5051)
	if !ok || kind.Name() != "InsufficientFunds" {
		t.Fatalf("Expected InsufficientFunds, got %v", kind)
	}
	if kind.Dynamic() {
		t.Error("Expected fixed kind not to be dynamic")
	}

	a, _ := LookupReasonCode(5036)
	b, _ := LookupReasonCode(5062)
	if a != b {
		t.Error("Expected codes sharing a name to share a kind")
	}

	if got := KindForReasonCode(5051, "SomethingElse"); got != kind {
		t.Error("Expected fixed code to ignore the label")
	}
}

func TestRegistryDynamicFirstWriterWins(t *testing.T) {
	registry := NewRegistry()

	if _, ok := registry.LookupReason(7001); ok {
		t.Fatal("Expected 7001 to be unknown")
	}

	first := registry.ReasonKind(7001, "CustomDecline")
	second := registry.ReasonKind(7001, "OtherLabel")
	if first != second {
		t.Error("Expected the same kind for the same code")
	}
	if first.Name() != "CustomDecline" || !first.Dynamic() || first.Family() != FamilyGateway {
		t.Errorf("Unexpected dynamic kind %s (dynamic=%v)", first.Name(), first.Dynamic())
	}

	sameName := registry.ReasonKind(7002, "CustomDecline")
	if sameName != first {
		t.Error("Expected a known label to reuse its kind")
	}

	reused := registry.ReasonKind(7003, "InsufficientFunds")
	fixed, _ := registry.LookupReason(5051)
	if reused != fixed {
		t.Error("Expected a fixed label to reuse the fixed kind")
	}

	if n := len(registry.DynamicKinds()); n != 3 {
		t.Errorf("Expected 3 dynamic codes, got %d", n)
	}
	if _, ok := NewRegistry().LookupReason(7001); ok {
		t.Error("Expected registries not to share dynamic kinds")
	}
}

func TestRegistryConcurrentRegistration(t *testing.T) {
	registry := NewRegistry()
	const workers = 64

	kinds := make([]*ErrorKind, workers)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			kinds[i] = registry.ReasonKind(8123, "Label"+string(rune('A'+i%26)))
		}(i)
	}
	close(start)
	wg.Wait()

	for i := 1; i < workers; i++ {
		if kinds[i] != kinds[0] {
			t.Fatal("Expected exactly one kind for a concurrently registered code")
		}
	}
}

func TestRegistryRetryable(t *testing.T) {
	registry := NewRegistry()
	insufficient, _ := registry.LookupReason(5051)
	lost, _ := registry.LookupReason(5041)

	if !registry.Retryable(insufficient) {
		t.Error("Expected InsufficientFunds to be retryable by default")
	}
	if registry.Retryable(lost) {
		t.Error("Expected LostCard not to be retryable by default")
	}

	registry.SetRetryable(lost)
	if !registry.Retryable(lost) || registry.Retryable(insufficient) {
		t.Error("Expected SetRetryable to replace the set")
	}
	if registry.Retryable(nil) {
		t.Error("Expected nil kind not to be retryable")
	}
}

func TestErrorKindError(t *testing.T) {
	kind, _ := KindForStatus(404)
	if kind.Error() != "cloudpay: http NotFound" {
		t.Errorf("Expected 'cloudpay: http NotFound', got '%s'", kind.Error())
	}
	if KindServerError.Name() != "ServerError" {
		t.Errorf("Expected ServerError, got %s", KindServerError.Name())
	}
}
