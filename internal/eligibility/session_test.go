package eligibility

import (
	"testing"

	"github.com/ffx-assist/program-finder/internal/models"
)

func sessionFixture() *Session {
	a := testProgram("a")
	a.Geographies = lv("fairfax_county")
	a.AgeGroups = lv("senior_62_plus")
	a.RequiresLegalStatus = bptr(true)
	a.NeedTypes = lv("energy_bill")

	b := testProgram("b")
	b.Geographies = lv("vienna")
	b.NeedTypes = lv("weatherization")

	return NewSession([]models.Program{a, b}, testQuestions(), testToday)
}

func TestSession_StartsAtFirstActiveQuestion(t *testing.T) {
	s := sessionFixture()
	q, ok := s.Current()
	if !ok {
		t.Fatal("expected a current question")
	}
	if q.Code != CodeGeography {
		t.Fatalf("expected geography first, got %s", q.Code)
	}
}

func TestSession_NextNeverPassesEnd(t *testing.T) {
	s := sessionFixture()
	active := len(s.Active())

	for i := 0; i < active+5; i++ {
		s.Next()
	}
	if s.Index() != active-1 {
		t.Fatalf("expected index pinned at %d, got %d", active-1, s.Index())
	}
	if _, ok := s.Current(); !ok {
		t.Fatal("current must remain valid at the end of the list")
	}
}

func TestSession_PrevNeverGoesNegative(t *testing.T) {
	s := sessionFixture()
	s.Prev()
	s.Prev()
	if s.Index() != 0 {
		t.Fatalf("expected index pinned at 0, got %d", s.Index())
	}
}

func TestSession_AnswerNarrowsMatches(t *testing.T) {
	s := sessionFixture()
	if n := len(s.Matches()); n != 2 {
		t.Fatalf("expected 2 matches before answering, got %d", n)
	}

	s.Answer(CodeGeography, Choice("vienna"))
	matches := s.Matches()
	if len(matches) != 1 || matches[0].Slug != "b" {
		t.Fatalf("expected only program b after answering vienna, got %v", matches)
	}
}

func TestSession_AnswerClampsPositionWhenListShrinks(t *testing.T) {
	s := sessionFixture()
	for i := 0; i < len(s.Active()); i++ {
		s.Next()
	}

	// Narrowing to one candidate drops questions that no longer
	// discriminate; the position must clamp into the shrunken list.
	s.Answer(CodeGeography, Choice("vienna"))
	if s.Index() >= len(s.Active()) && len(s.Active()) > 0 {
		t.Fatalf("index %d escaped active list of %d", s.Index(), len(s.Active()))
	}
	if _, ok := s.Current(); !ok && len(s.Active()) > 0 {
		t.Fatal("current question must be valid after clamping")
	}
}

func TestSession_ResetClearsEverything(t *testing.T) {
	s := sessionFixture()
	s.Answer(CodeGeography, Choice("vienna"))
	s.Next()

	s.Reset()
	if len(s.Answers()) != 0 {
		t.Fatal("expected no answers after reset")
	}
	if s.Index() != 0 {
		t.Fatalf("expected index 0 after reset, got %d", s.Index())
	}
	if n := len(s.Matches()); n != 2 {
		t.Fatalf("expected full candidate set after reset, got %d", n)
	}
}
