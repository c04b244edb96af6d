package transport

import (
	"fmt"
	"sync"
	"testing"
)

func TestInProcessAllGather(t *testing.T) {
	groups := NewInProcessGroup(4)
	var wg sync.WaitGroup
	results := make([][][]byte, len(groups))
	for i, g := range groups {
		wg.Add(1)
		go func(i int, g Group) {
			defer wg.Done()
			out, err := g.AllGather([]byte{byte(g.Rank())})
			if err != nil {
				t.Errorf("rank %d: %v", g.Rank(), err)
				return
			}
			results[i] = out
		}(i, g)
	}
	wg.Wait()

	for r, res := range results {
		if len(res) != 4 {
			t.Fatalf("rank %d: expected 4 contributions, got %d", r, len(res))
		}
		for i, b := range res {
			if len(b) != 1 || b[0] != byte(i) {
				t.Fatalf("rank %d: contribution %d = %v, want [%d]", r, i, b, i)
			}
		}
	}
}

func TestInProcessExchange(t *testing.T) {
	groups := NewInProcessGroup(3)
	var wg sync.WaitGroup
	results := make([]map[int][]byte, len(groups))
	for i, g := range groups {
		wg.Add(1)
		go func(i int, g Group) {
			defer wg.Done()
			out := map[int][]byte{}
			for dst := 0; dst < 3; dst++ {
				if dst == g.Rank() {
					continue
				}
				out[dst] = []byte(fmt.Sprintf("%d->%d", g.Rank(), dst))
			}
			in, err := g.Exchange(out)
			if err != nil {
				t.Errorf("rank %d: %v", g.Rank(), err)
				return
			}
			results[i] = in
		}(i, g)
	}
	wg.Wait()

	for r, in := range results {
		for src, payload := range in {
			want := fmt.Sprintf("%d->%d", src, r)
			if string(payload) != want {
				t.Fatalf("rank %d received %q from %d, want %q", r, payload, src, want)
			}
		}
	}
}

func TestInProcessSub(t *testing.T) {
	groups := NewInProcessGroup(4)
	members := []int{1, 3}
	var wg sync.WaitGroup
	for _, g := range groups {
		if g.Rank() != 1 && g.Rank() != 3 {
			continue
		}
		wg.Add(1)
		go func(g Group) {
			defer wg.Done()
			sub, err := g.Sub(members)
			if err != nil {
				t.Errorf("Sub: %v", err)
				return
			}
			if sub.Size() != 2 {
				t.Errorf("sub size = %d, want 2", sub.Size())
			}
			if err := sub.Barrier(); err != nil {
				t.Errorf("Barrier: %v", err)
			}
		}(g)
	}
	wg.Wait()
}
