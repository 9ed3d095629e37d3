package regions

import (
	"testing"

	"github.com/vorojar/Folio-OCR/session"
)

func testPage() *session.Page {
	return &session.Page{
		Num: 1,
		Regions: []session.Region{
			{Index: 0, BBox: session.BBox{Left: 100, Top: 50, Right: 300, Bottom: 150}, Label: "text"},
			{Index: 1, BBox: session.BBox{Left: 0, Top: 200, Right: 1000, Bottom: 400}, Label: "table"},
		},
	}
}

func TestProjectScalesIndependently(t *testing.T) {
	m := NewMapper()
	// Natural 1000x2000 rendered at 500x500: sx=0.5, sy=0.25.
	boxes := m.Project(testPage().Regions, 1000, 2000, 500, 500)
	if len(boxes) != 2 {
		t.Fatalf("got %d boxes, want 2", len(boxes))
	}

	b := boxes[0]
	if b.Left != 50 || b.Top != 12.5 || b.Width != 100 || b.Height != 25 {
		t.Errorf("box 0 = %+v, want Left 50 Top 12.5 Width 100 Height 25", b)
	}
	if b.Label != "text" {
		t.Errorf("Label = %q, want %q", b.Label, "text")
	}
}

func TestProjectEmptyAndDegenerate(t *testing.T) {
	m := NewMapper()
	if got := m.Project(nil, 1000, 2000, 500, 500); got != nil {
		t.Errorf("nil regions: got %v, want nil", got)
	}
	if got := m.Project(testPage().Regions, 0, 0, 500, 500); got != nil {
		t.Errorf("zero natural size: got %v, want nil", got)
	}
}

func TestProjectMarksActive(t *testing.T) {
	m := NewMapper()
	pg := testPage()
	if _, ok := m.Activate(pg, 1, session.ModeEdit); !ok {
		t.Fatal("Activate failed")
	}

	boxes := m.Project(pg.Regions, 1000, 2000, 1000, 2000)
	if boxes[0].Active || !boxes[1].Active {
		t.Errorf("active flags = %v/%v, want false/true", boxes[0].Active, boxes[1].Active)
	}
}

func TestActivateSwitchesActivePair(t *testing.T) {
	m := NewMapper()
	pg := testPage()

	act, ok := m.Activate(pg, 0, session.ModeEdit)
	if !ok {
		t.Fatal("first Activate failed")
	}
	if act.PrevIndex != -1 || act.Index != 0 || act.ScrollTo != 0 {
		t.Errorf("first activation = %+v", act)
	}

	act, _ = m.Activate(pg, 1, session.ModeEdit)
	if act.PrevIndex != 0 || act.Index != 1 {
		t.Errorf("second activation = %+v, want prev 0 index 1", act)
	}
	if m.Active() != 1 {
		t.Errorf("Active() = %d, want 1", m.Active())
	}
}

func TestActivateUnknownIndexNoop(t *testing.T) {
	m := NewMapper()
	pg := testPage()
	m.Activate(pg, 0, session.ModeEdit)

	if _, ok := m.Activate(pg, 7, session.ModeEdit); ok {
		t.Error("unknown index should not activate")
	}
	if m.Active() != 0 {
		t.Errorf("Active() = %d after no-op, want 0", m.Active())
	}
}

func TestActivateInPreviewRequestsEditMode(t *testing.T) {
	m := NewMapper()
	act, ok := m.Activate(testPage(), 0, session.ModePreview)
	if !ok {
		t.Fatal("Activate failed")
	}
	if act.SwitchMode != session.ModeEdit {
		t.Errorf("SwitchMode = %q, want %q", act.SwitchMode, session.ModeEdit)
	}
}

func TestResetClearsActivation(t *testing.T) {
	m := NewMapper()
	m.Activate(testPage(), 1, session.ModeEdit)
	m.Reset()
	if m.Active() != -1 {
		t.Errorf("Active() = %d after Reset, want -1", m.Active())
	}
}
