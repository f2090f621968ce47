package models

import (
	"testing"

	"github.com/google/uuid"
)

func TestNormalizePair(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-0000000000aa")
	b := uuid.MustParse("00000000-0000-0000-0000-0000000000bb")

	low, high := NormalizePair(a, b)
	if low != a || high != b {
		t.Errorf("NormalizePair(a, b) = %s, %s", low, high)
	}

	// Order of arguments must not matter.
	low2, high2 := NormalizePair(b, a)
	if low2 != low || high2 != high {
		t.Errorf("pair is not order independent: %s, %s", low2, high2)
	}
}

func TestConversationParticipants(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	low, high := NormalizePair(a, b)
	conv := Conversation{UserLowID: low, UserHighID: high}

	if !conv.HasParticipant(a) || !conv.HasParticipant(b) {
		t.Errorf("both parties must be participants")
	}
	if conv.HasParticipant(uuid.New()) {
		t.Errorf("a stranger must not be a participant")
	}
	if conv.OtherParticipant(a) != b || conv.OtherParticipant(b) != a {
		t.Errorf("OtherParticipant should return the counterpart")
	}
}
