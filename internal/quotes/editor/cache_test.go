package editor

import "testing"

func TestCacheInvalidatesOneGroup(t *testing.T) {
	c := NewCache()
	c.Put(GroupServiceLabels, "a", "Hotel Plaza")
	c.Put(CatalogGroup("cities"), "cities", []LookupEntry{{Value: "LIM", Label: "Lima"}})

	c.Invalidate(GroupServiceLabels)

	if _, ok := c.Get(GroupServiceLabels, "a"); ok {
		t.Fatal("expected label group to be dropped")
	}
	entries, ok := Lookup[[]LookupEntry](c, CatalogGroup("cities"), "cities")
	if !ok || len(entries) != 1 {
		t.Fatal("expected catalog group to survive")
	}
}

func TestLookupRejectsWrongType(t *testing.T) {
	c := NewCache()
	c.Put(GroupServiceLabels, "a", 42)

	if _, ok := Lookup[string](c, GroupServiceLabels, "a"); ok {
		t.Fatal("expected type mismatch to miss")
	}
}
