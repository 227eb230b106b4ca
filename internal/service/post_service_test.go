package service

import (
	"context"
	"testing"

	config "github.com/gpowereth/blogbot/configs"
)

func newTestPostService(t *testing.T) PostService {
	t.Helper()
	// R2 left unconfigured: the mirror is a no-op in tests.
	return NewPostService(newTestRepo(t), NewR2Service(config.Config{}))
}

func TestPublishAssignsSequentialIDs(t *testing.T) {
	ps := newTestPostService(t)
	ctx := context.Background()

	first, err := ps.Publish(ctx, "images/tg/blog_a.jpg", "Heading A", "Caption A")
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	second, err := ps.Publish(ctx, "images/tg/blog_b.jpg", "Heading B", "Caption B")
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if first != 1 || second != 2 {
		t.Errorf("expected ids 1 and 2, got %d and %d", first, second)
	}

	posts, err := ps.ListRecent(ctx, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(posts))
	}
	if posts[0].Heading != "Heading B" {
		t.Errorf("expected newest first, got %q", posts[0].Heading)
	}
}

func TestPublishRejectsEmptyFields(t *testing.T) {
	ps := newTestPostService(t)
	ctx := context.Background()

	cases := []struct {
		name                        string
		photoPath, heading, caption string
	}{
		{"no photo", "", "h", "c"},
		{"no heading", "p.jpg", "", "c"},
		{"no caption", "p.jpg", "h", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ps.Publish(ctx, tc.photoPath, tc.heading, tc.caption); err == nil {
				t.Error("expected an error")
			}
		})
	}

	posts, err := ps.ListRecent(ctx, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(posts) != 0 {
		t.Errorf("rejected publishes must not insert rows, got %d", len(posts))
	}
}

func TestUnpublishValidatesID(t *testing.T) {
	ps := newTestPostService(t)

	if err := ps.Unpublish(context.Background(), 0); err == nil {
		t.Error("expected an error for id 0")
	}
}
