package knowledge

import "testing"

func TestViewAppliesInOrder(t *testing.T) {
	v := NewView()

	gen := v.Begin()
	g := NewGraph()
	g.AddProduct(Product{ID: "p1"})

	if !v.Apply(gen, g) {
		t.Fatal("expected fresh generation to apply")
	}
	if v.Graph().NodeCount() != 1 {
		t.Fatalf("expected applied graph, got %d nodes", v.Graph().NodeCount())
	}
}

func TestViewDiscardsStaleGeneration(t *testing.T) {
	v := NewView()

	stale := v.Begin()
	fresh := v.Begin()

	newer := NewGraph()
	newer.AddProduct(Product{ID: "new"})
	if !v.Apply(fresh, newer) {
		t.Fatal("expected newer generation to apply")
	}

	older := NewGraph()
	older.AddProduct(Product{ID: "old"})
	if v.Apply(stale, older) {
		t.Fatal("expected stale generation to be discarded")
	}

	if _, ok := v.Graph().Node("new"); !ok {
		t.Fatal("stale response replaced newer data")
	}
}

func TestViewStartsEmpty(t *testing.T) {
	v := NewView()
	if v.Graph() == nil || v.Graph().NodeCount() != 0 {
		t.Fatal("expected an empty graph before the first load")
	}
}
