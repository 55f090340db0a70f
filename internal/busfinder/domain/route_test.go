package domain

import "testing"

func TestCatalogFindIsCaseInsensitiveAndOrderPreserving(t *testing.T) {
	catalog := DefaultCatalog()

	got := catalog.Find("  mumbai", "PUNE ")
	if len(got) != 2 {
		t.Fatalf("expected 2 routes, got %d: %+v", len(got), got)
	}
	if got[0].Carrier != "Shivneri 404" || got[1].Carrier != "Volvo Sleeper 505" {
		t.Fatalf("routes out of catalog order: %+v", got)
	}
}

func TestCatalogFindMatchesExactlyTheCatalogSubset(t *testing.T) {
	catalog := DefaultCatalog()

	for _, r := range catalog.List() {
		got := catalog.Find(r.Origin, r.Destination)
		var want []Route
		for _, c := range catalog.List() {
			if c.Origin == r.Origin && c.Destination == r.Destination {
				want = append(want, c)
			}
		}
		if len(got) != len(want) {
			t.Fatalf("%s→%s: got %d routes, want %d", r.Origin, r.Destination, len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("%s→%s: position %d got %+v, want %+v", r.Origin, r.Destination, i, got[i], want[i])
			}
		}
	}
}

func TestCatalogFindNoMatchReturnsEmpty(t *testing.T) {
	got := DefaultCatalog().Find("City A", "Atlantis")
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestCatalogListIsACopy(t *testing.T) {
	catalog := DefaultCatalog()
	routes := catalog.List()
	routes[0].Carrier = "Tampered"

	if catalog.List()[0].Carrier != "Express 101" {
		t.Fatal("catalog mutated through List")
	}
}

func TestCatalogLookup(t *testing.T) {
	catalog := DefaultCatalog()

	r, ok := catalog.Lookup("city a", "city b", "express 101")
	if !ok || r.Carrier != "Express 101" {
		t.Fatalf("lookup failed: %+v %v", r, ok)
	}
	if _, ok := catalog.Lookup("City A", "City B", "Rapid 202"); ok {
		t.Fatal("lookup should not match a carrier from another route")
	}
}
