package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCart_TotalAndItemCount(t *testing.T) {
	c := Cart{Items: []LineItem{
		{ID: "1", Name: "Router", Price: 1499.5, Quantity: 2},
		{ID: "2", Name: "Cable", Price: 99, Quantity: 3},
	}}

	assert.InDelta(t, 1499.5*2+99*3, c.Total(), 1e-9)
	assert.Equal(t, 5, c.ItemCount())
}

func TestCart_EmptyTotals(t *testing.T) {
	var c Cart
	assert.Zero(t, c.Total())
	assert.Zero(t, c.ItemCount())
	assert.True(t, c.IsEmpty())
	assert.Equal(t, -1, c.Index("missing"))
}

func TestCart_MarshalsAsArray(t *testing.T) {
	data, err := json.Marshal(Cart{})
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))

	c := Cart{Items: []LineItem{{ID: "a", Name: "A", Price: 10, Quantity: 1}}}
	data, err = json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"a","name":"A","price":10,"quantity":1}]`, string(data))
}

func TestLineItem_KeepsProductFields(t *testing.T) {
	raw := `{"id":7,"name":"Switch","price":250,"quantity":2,"image":"switch.png","specs":{"ports":8}}`

	var item LineItem
	require.NoError(t, json.Unmarshal([]byte(raw), &item))
	assert.Equal(t, ProductID("7"), item.ID)
	assert.Equal(t, 2, item.Quantity)
	assert.JSONEq(t, `"switch.png"`, string(item.Attributes["image"]))
	assert.JSONEq(t, `{"ports":8}`, string(item.Attributes["specs"]))
	assert.NotContains(t, item.Attributes, "quantity")

	out, err := json.Marshal(item)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"7","name":"Switch","price":250,"quantity":2,"image":"switch.png","specs":{"ports":8}}`, string(out))
}

func TestNewLineItem_CopiesAttributes(t *testing.T) {
	p := Product{ID: "x", Name: "X", Price: 5, Attributes: Attributes{"color": json.RawMessage(`"red"`)}}
	item := NewLineItem(p, 3)

	item.Attributes["color"] = json.RawMessage(`"blue"`)
	assert.JSONEq(t, `"red"`, string(p.Attributes["color"]))
	assert.InDelta(t, 15, item.Subtotal(), 1e-9)
}

func TestCart_CloneIsIndependent(t *testing.T) {
	c := Cart{Items: []LineItem{{ID: "a", Quantity: 1, Attributes: Attributes{"image": json.RawMessage(`"a.png"`)}}}}
	clone := c.Clone()
	if diff := cmp.Diff(c, clone); diff != "" {
		t.Fatalf("clone differs (-orig +clone):\n%s", diff)
	}

	clone.Items[0].Quantity = 9
	clone.Items[0].Attributes["image"] = json.RawMessage(`"b.png"`)

	assert.Equal(t, 1, c.Items[0].Quantity)
	assert.JSONEq(t, `"a.png"`, string(c.Items[0].Attributes["image"]))
}

func TestProductID_Decoding(t *testing.T) {
	tests := []struct {
		raw  string
		want ProductID
	}{
		{`"abc"`, "abc"},
		{`12`, "12"},
		{`3.5`, "3.5"},
	}
	for _, tt := range tests {
		var id ProductID
		require.NoError(t, json.Unmarshal([]byte(tt.raw), &id))
		assert.Equal(t, tt.want, id)
	}

	var id ProductID
	assert.Error(t, json.Unmarshal([]byte(`true`), &id))
}

func TestCatalog_Find(t *testing.T) {
	var c Catalog
	require.NoError(t, json.Unmarshal([]byte(`{"products":[{"id":1,"name":"One","price":1},{"id":"two","name":"Two","price":2,"badge":"new"}]}`), &c))

	p, ok := c.Find("two")
	require.True(t, ok)
	assert.Equal(t, "Two", p.Name)
	assert.JSONEq(t, `"new"`, string(p.Attributes["badge"]))

	_, ok = c.Find("three")
	assert.False(t, ok)
}
