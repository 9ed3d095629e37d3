package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "mirror.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPageRoundtrip(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	if err := s.UpsertDocument(ctx, "doc1", "scan.pdf"); err != nil {
		t.Fatalf("UpsertDocument: %v", err)
	}
	text := "# Page one"
	err := s.UpsertPage(ctx, Page{
		DocID:      "doc1",
		Num:        1,
		ImageRef:   "/images/doc1/1.png",
		Text:       &text,
		DurationMS: 1500,
		Status:     "done",
	})
	if err != nil {
		t.Fatalf("UpsertPage: %v", err)
	}

	got, err := s.GetPage(ctx, "doc1", 1)
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if got.Text == nil || *got.Text != text {
		t.Errorf("Text = %v, want %q", got.Text, text)
	}
	if got.Status != "done" || got.DurationMS != 1500 {
		t.Errorf("page = %+v", got)
	}
}

func TestUpsertPageReplaces(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	s.UpsertDocument(ctx, "doc1", "scan.pdf")
	s.UpsertPage(ctx, Page{DocID: "doc1", Num: 1, Status: "pending"})
	text := "recognized"
	if err := s.UpsertPage(ctx, Page{DocID: "doc1", Num: 1, Text: &text, Status: "done"}); err != nil {
		t.Fatalf("second UpsertPage: %v", err)
	}

	got, err := s.GetPage(ctx, "doc1", 1)
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if got.Status != "done" || got.Text == nil {
		t.Errorf("page not replaced: %+v", got)
	}
}

func TestSavePageTextCreatesRow(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	s.UpsertDocument(ctx, "doc1", "scan.pdf")
	if err := s.SavePageText(ctx, "doc1", 5, "edited text"); err != nil {
		t.Fatalf("SavePageText: %v", err)
	}

	got, err := s.GetPage(ctx, "doc1", 5)
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if got.Text == nil || *got.Text != "edited text" {
		t.Errorf("Text = %v, want %q", got.Text, "edited text")
	}
}

func TestListDocumentsCountsPages(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	s.UpsertDocument(ctx, "doc1", "a.pdf")
	s.UpsertDocument(ctx, "doc2", "b.pdf")
	s.UpsertPage(ctx, Page{DocID: "doc1", Num: 1, Status: "pending"})
	s.UpsertPage(ctx, Page{DocID: "doc1", Num: 2, Status: "pending"})

	docs, err := s.ListDocuments(ctx)
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("got %d documents, want 2", len(docs))
	}
	for _, d := range docs {
		switch d.ID {
		case "doc1":
			if d.PageCount != 2 {
				t.Errorf("doc1 PageCount = %d, want 2", d.PageCount)
			}
		case "doc2":
			if d.PageCount != 0 {
				t.Errorf("doc2 PageCount = %d, want 0", d.PageCount)
			}
		}
	}
}

func TestDeleteDocumentCascades(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	s.UpsertDocument(ctx, "doc1", "a.pdf")
	s.UpsertPage(ctx, Page{DocID: "doc1", Num: 1, Status: "done"})

	if err := s.DeleteDocument(ctx, "doc1"); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
	if _, err := s.GetPage(ctx, "doc1", 1); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetPage after delete: %v, want sql.ErrNoRows", err)
	}
}

func TestCloseConcurrentWithSaves(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	s.UpsertDocument(ctx, "doc1", "a.pdf")

	// Saves racing Close must either land or get a closed error; the
	// race detector checks the flag accesses.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			s.SavePageText(ctx, "doc1", n, "text")
		}(i)
	}
	s.Close()
	wg.Wait()

	if err := s.SavePageText(ctx, "doc1", 99, "late"); !errors.Is(err, ErrClosed) {
		t.Errorf("save after close = %v, want ErrClosed", err)
	}
}

func TestClosedStore(t *testing.T) {
	s := openTest(t)
	s.Close()

	if err := s.UpsertDocument(context.Background(), "doc1", "a.pdf"); !errors.Is(err, ErrClosed) {
		t.Errorf("err = %v, want ErrClosed", err)
	}
	if _, err := s.ListDocuments(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("err = %v, want ErrClosed", err)
	}
}
