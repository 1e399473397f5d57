package history

import (
	"fmt"
	"testing"

	"github.com/voltlab/patchmind/internal/patch"
)

func snapshot(id string) *patch.Patch {
	return &patch.Patch{ID: id, Metadata: patch.Metadata{Title: "Patch " + id}}
}

func TestNewSeedsInitialSnapshot(t *testing.T) {
	h := New(snapshot("p0"))
	if h.Len() != 1 {
		t.Fatalf("expected 1 snapshot, got %d", h.Len())
	}
	cur, ok := h.CurrentPatch()
	if !ok || cur.ID != "p0" {
		t.Fatalf("unexpected current: %+v ok=%v", cur, ok)
	}
}

func TestUndoOnInitialOnly(t *testing.T) {
	h := New(snapshot("p0"))
	if _, ok := h.Undo(); ok {
		t.Fatalf("nothing earlier than the initial patch")
	}
	// A failed undo changes nothing.
	cur, ok := h.CurrentPatch()
	if !ok || cur.ID != "p0" {
		t.Fatalf("current moved after failed undo: %+v", cur)
	}
	if _, ok := h.Undo(); ok {
		t.Fatalf("repeated failed undo must stay false")
	}
}

func TestSlidingWindowEvictsOldest(t *testing.T) {
	h := New(snapshot("p0"))
	for i := 1; i <= 10; i++ {
		h.AddPatch(snapshot(fmt.Sprintf("p%d", i)))
	}
	if h.Len() != DefaultCapacity {
		t.Fatalf("expected %d snapshots, got %d", DefaultCapacity, h.Len())
	}
	cur, _ := h.CurrentPatch()
	if cur.ID != "p10" {
		t.Fatalf("current must be the latest, got %s", cur.ID)
	}
	snaps := h.Snapshots()
	if snaps[0].ID != "p6" {
		t.Fatalf("oldest retained should be p6, got %s", snaps[0].ID)
	}
	if snaps[len(snaps)-1].ID != "p10" {
		t.Fatalf("newest retained should be p10, got %s", snaps[len(snaps)-1].ID)
	}
}

func TestUndoWalksBackwards(t *testing.T) {
	h := New(snapshot("p0"))
	h.AddPatch(snapshot("p1"))
	h.AddPatch(snapshot("p2"))
	prev, ok := h.Undo()
	if !ok || prev.ID != "p1" {
		t.Fatalf("expected p1, got %+v ok=%v", prev, ok)
	}
	prev, ok = h.Undo()
	if !ok || prev.ID != "p0" {
		t.Fatalf("expected p0, got %+v ok=%v", prev, ok)
	}
	if _, ok := h.Undo(); ok {
		t.Fatalf("undo past the floor must fail")
	}
}

func TestUndoAfterWindowSlides(t *testing.T) {
	// Once the initial patch is evicted, the floor is the oldest retained
	// snapshot, not the original.
	h := New(snapshot("p0"), WithCapacity(3))
	for i := 1; i <= 5; i++ {
		h.AddPatch(snapshot(fmt.Sprintf("p%d", i)))
	}
	// Window is now [p3 p4 p5].
	seen := []string{}
	for {
		prev, ok := h.Undo()
		if !ok {
			break
		}
		seen = append(seen, prev.ID)
	}
	if len(seen) != 2 || seen[0] != "p4" || seen[1] != "p3" {
		t.Fatalf("unexpected undo walk: %v", seen)
	}
}

func TestPreviousPatchPeeks(t *testing.T) {
	h := New(snapshot("p0"))
	h.AddPatch(snapshot("p1"))
	prev, ok := h.PreviousPatch()
	if !ok || prev.ID != "p0" {
		t.Fatalf("expected p0 peek, got %+v ok=%v", prev, ok)
	}
	cur, _ := h.CurrentPatch()
	if cur.ID != "p1" {
		t.Fatalf("peek must not move the pointer")
	}
}

func TestSnapshotsAreIsolatedCopies(t *testing.T) {
	original := snapshot("p0")
	original.Tips = []string{"keep the drone going"}
	h := New(original)
	original.Tips[0] = "mutated"
	cur, _ := h.CurrentPatch()
	if cur.Tips[0] != "keep the drone going" {
		t.Fatalf("history shares state with the caller: %v", cur.Tips)
	}
	cur.Metadata.Title = "changed"
	again, _ := h.CurrentPatch()
	if again.Metadata.Title == "changed" {
		t.Fatalf("returned snapshots must be copies")
	}
}

func TestAddPatchIgnoresNil(t *testing.T) {
	h := New(snapshot("p0"))
	h.AddPatch(nil)
	if h.Len() != 1 {
		t.Fatalf("nil snapshot must be ignored, got %d", h.Len())
	}
}

func TestClear(t *testing.T) {
	h := New(snapshot("p0"))
	h.AddPatch(snapshot("p1"))
	h.Clear()
	if h.Len() != 0 {
		t.Fatalf("expected empty history, got %d", h.Len())
	}
	if _, ok := h.CurrentPatch(); ok {
		t.Fatalf("cleared history has no current patch")
	}
}
