package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/verte-zerg/wordtrack/internal/model"
)

type memPersister struct {
	entries []model.Entry
	stored  bool
	saves   int
	clears  int
	loadErr error
	saveErr error
}

func (m *memPersister) Load(context.Context) ([]model.Entry, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if !m.stored {
		return nil, nil
	}
	out := make([]model.Entry, len(m.entries))
	copy(out, m.entries)
	return out, nil
}

func (m *memPersister) Save(_ context.Context, entries []model.Entry) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.entries = append([]model.Entry(nil), entries...)
	m.stored = true
	return nil
}

func (m *memPersister) Clear(context.Context) error {
	m.clears++
	m.entries = nil
	m.stored = false
	return nil
}

func TestAddIgnoresCaseDuplicates(t *testing.T) {
	ctx := context.Background()
	r := New(&memPersister{})
	if added, err := r.Add(ctx, "Like"); err != nil || !added {
		t.Fatalf("expected first add to succeed, got added=%v err=%v", added, err)
	}
	if added, _ := r.Add(ctx, "LIKE"); added {
		t.Fatalf("expected case-insensitive duplicate to be ignored")
	}
	if added, _ := r.Add(ctx, "  like  "); added {
		t.Fatalf("expected trimmed duplicate to be ignored")
	}
	words := r.List()
	if len(words) != 1 {
		t.Fatalf("expected 1 word, got %d", len(words))
	}
	if words[0].Display != "Like" || words[0].Key != "like" {
		t.Fatalf("unexpected word: %+v", words[0])
	}
}

func TestAddIgnoresEmpty(t *testing.T) {
	p := &memPersister{}
	r := New(p)
	if added, err := r.Add(context.Background(), "   "); added || err != nil {
		t.Fatalf("expected empty add to be a no-op, got added=%v err=%v", added, err)
	}
	if p.saves != 0 {
		t.Fatalf("expected no save for empty add")
	}
}

func TestRemoveIsCaseSensitive(t *testing.T) {
	ctx := context.Background()
	r := New(&memPersister{})
	_, _ = r.Add(ctx, "cat")
	if removed, _ := r.Remove(ctx, "Cat"); removed {
		t.Fatalf("expected differently-cased remove to miss")
	}
	if !r.Contains("cat") {
		t.Fatalf("expected cat to remain tracked")
	}
	if removed, _ := r.Remove(ctx, "cat"); !removed {
		t.Fatalf("expected exact remove to succeed")
	}
	if r.Contains("cat") {
		t.Fatalf("expected cat to be gone")
	}
}

// A word added as "Cat" cannot be removed with "cat" even though adding "cat"
// is rejected as a duplicate.
func TestRemoveAsymmetryWithAdd(t *testing.T) {
	ctx := context.Background()
	r := New(&memPersister{})
	_, _ = r.Add(ctx, "Cat")
	if added, _ := r.Add(ctx, "cat"); added {
		t.Fatalf("expected duplicate add to be ignored")
	}
	if removed, _ := r.Remove(ctx, "cat"); removed {
		t.Fatalf("expected lowercase remove to miss")
	}
	if r.Len() != 1 {
		t.Fatalf("expected Cat to remain tracked")
	}
}

func TestRemoveLastClearsStoredRecord(t *testing.T) {
	ctx := context.Background()
	p := &memPersister{}
	r := New(p)
	_, _ = r.Add(ctx, "one")
	_, _ = r.Add(ctx, "two")
	_, _ = r.Remove(ctx, "one")
	if !p.stored || len(p.entries) != 1 {
		t.Fatalf("expected one stored entry, got %+v", p.entries)
	}
	_, _ = r.Remove(ctx, "two")
	if p.clears != 1 {
		t.Fatalf("expected clear on last remove, got %d", p.clears)
	}
	reloaded, err := Load(ctx, p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if reloaded.Len() != 0 {
		t.Fatalf("expected empty registry after reload")
	}
	if p.stored {
		t.Fatalf("expected stored record to be absent")
	}
}

func TestApplyCounts(t *testing.T) {
	ctx := context.Background()
	p := &memPersister{}
	r := New(p)
	_, _ = r.Add(ctx, "the")
	_, _ = r.Add(ctx, "dog")
	saves := p.saves

	changed, err := r.ApplyCounts(ctx, map[string]int{"the": 2, "cat": 1})
	if err != nil || !changed {
		t.Fatalf("expected change, got changed=%v err=%v", changed, err)
	}
	words := r.List()
	if words[0].Lifetime != 2 || words[0].Session != 2 {
		t.Fatalf("unexpected counters for the: %+v", words[0])
	}
	if words[1].Lifetime != 0 || words[1].Session != 0 {
		t.Fatalf("untracked match changed dog: %+v", words[1])
	}
	if p.saves != saves+1 {
		t.Fatalf("expected one save after counting")
	}

	if changed, _ := r.ApplyCounts(ctx, map[string]int{"cat": 4}); changed {
		t.Fatalf("expected no change for untracked words")
	}
	if p.saves != saves+1 {
		t.Fatalf("expected no save without changes")
	}
}

func TestLoadResetsSessionCounts(t *testing.T) {
	ctx := context.Background()
	p := &memPersister{}
	r := New(p)
	_, _ = r.Add(ctx, "Hello")
	_, _ = r.Add(ctx, "world")
	_, _ = r.ApplyCounts(ctx, map[string]int{"hello": 3, "world": 1})

	reloaded, err := Load(ctx, p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	words := reloaded.List()
	if len(words) != 2 {
		t.Fatalf("expected 2 words, got %d", len(words))
	}
	if words[0].Display != "Hello" || words[1].Display != "world" {
		t.Fatalf("insertion order lost: %+v", words)
	}
	if words[0].Lifetime != 3 || words[1].Lifetime != 1 {
		t.Fatalf("unexpected lifetime counts: %+v", words)
	}
	for _, w := range words {
		if w.Session != 0 {
			t.Fatalf("expected session count reset, got %+v", w)
		}
	}
}

func TestLoadFailureStartsEmpty(t *testing.T) {
	p := &memPersister{loadErr: errors.New("disk gone")}
	r, err := Load(context.Background(), p)
	if err == nil {
		t.Fatalf("expected load error to be reported")
	}
	if r == nil || r.Len() != 0 {
		t.Fatalf("expected usable empty registry")
	}
}

func TestSaveFailureKeepsMutation(t *testing.T) {
	p := &memPersister{saveErr: errors.New("read-only")}
	r := New(p)
	added, err := r.Add(context.Background(), "word")
	if !added {
		t.Fatalf("expected add to apply despite save failure")
	}
	if err == nil {
		t.Fatalf("expected save failure to be reported")
	}
	if !r.Contains("word") {
		t.Fatalf("expected word to stay tracked")
	}
}
