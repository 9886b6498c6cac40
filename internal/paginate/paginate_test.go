package paginate_test

import (
	"errors"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Text-Search-Server/internal/paginate"
	pkgerrors "github.com/Adithya-Monish-Kumar-K/Text-Search-Server/pkg/errors"
)

func TestPages(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	pages, err := paginate.Pages(items, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(pages) != 3 {
		t.Fatalf("page count = %d, want 3", len(pages))
	}
	if len(pages[0]) != 2 || len(pages[1]) != 2 || len(pages[2]) != 1 {
		t.Fatalf("page sizes = %d/%d/%d, want 2/2/1", len(pages[0]), len(pages[1]), len(pages[2]))
	}
	if pages[2][0] != 5 {
		t.Fatalf("last page = %v, want [5]", pages[2])
	}

	pages, err = paginate.Pages(items, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(pages) != 1 || len(pages[0]) != 5 {
		t.Fatalf("oversized page split wrong: %v", pages)
	}

	pages, err = paginate.Pages([]int{}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(pages) != 0 {
		t.Fatalf("empty input produced pages: %v", pages)
	}
}

func TestPagesRejectsNonPositiveSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		if _, err := paginate.Pages([]int{1}, size); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
			t.Errorf("Pages(size=%d) error = %v, want ErrInvalidArgument", size, err)
		}
	}
}

func TestPage(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}

	page, err := paginate.Page(items, 2, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 2 || page[0] != "c" || page[1] != "d" {
		t.Fatalf("page 1 = %v, want [c d]", page)
	}

	page, err = paginate.Page(items, 2, 9)
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 0 {
		t.Fatalf("past-the-end page = %v, want empty", page)
	}

	if _, err := paginate.Page(items, 2, -1); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("negative index error = %v, want ErrInvalidArgument", err)
	}
}
