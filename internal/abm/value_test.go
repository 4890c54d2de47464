package abm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueDecodesEveryKind(t *testing.T) {
	var v Value
	require.NoError(t, json.Unmarshal([]byte(`{"s":"x","n":4.5,"b":true,"l":[1,"two"],"o":{"k":null}}`), &v))

	assert.Equal(t, KindObject, v.Kind())
	assert.Equal(t, []string{"b", "l", "n", "o", "s"}, v.Keys())

	s, ok := v.Field("s").AsString()
	assert.True(t, ok)
	assert.Equal(t, "x", s)

	n, ok := v.Field("n").AsNumber()
	assert.True(t, ok)
	assert.Equal(t, 4.5, n)

	b, ok := v.Field("b").AsBool()
	assert.True(t, ok)
	assert.True(t, b)

	items, ok := v.Field("l").AsList()
	require.True(t, ok)
	require.Len(t, items, 2)
	assert.Equal(t, KindNumber, items[0].Kind())
	assert.Equal(t, KindString, items[1].Kind())

	assert.True(t, v.Field("o").Field("k").IsNull())
	assert.True(t, v.Field("missing").IsNull())
	assert.True(t, String("x").Field("k").IsNull())
}

func TestValueJSONRoundTrip(t *testing.T) {
	in := Object(map[string]Value{
		"replies":  Number(12),
		"openRate": Number(0.45),
		"tags":     List(String("a"), Bool(false), Null()),
	})
	out, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"replies":12,"openRate":0.45,"tags":["a",false,null]}`, string(out))

	empty, err := json.Marshal(List())
	require.NoError(t, err)
	assert.Equal(t, "[]", string(empty))
}

func TestValueScan(t *testing.T) {
	var v Value
	require.NoError(t, v.Scan([]byte(`["Acme","Globex"]`)))
	companies, err := MockCompaniesOf(v)
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme", "Globex"}, companies)

	require.NoError(t, v.Scan(nil))
	assert.True(t, v.IsNull())

	assert.Error(t, v.Scan(42))

	stored, err := List(String("a")).Value()
	require.NoError(t, err)
	assert.Equal(t, `["a"]`, stored)
}

func TestMockViews(t *testing.T) {
	var leads Value
	require.NoError(t, json.Unmarshal([]byte(`[{"name":"Ann","company":"Acme","title":"CEO"}]`), &leads))
	got, err := MockLeadsOf(leads)
	require.NoError(t, err)
	assert.Equal(t, []MockLead{{Name: "Ann", Company: "Acme", Title: "CEO"}}, got)

	var bad Value
	require.NoError(t, json.Unmarshal([]byte(`[{"name":"Ann","company":"Acme"}]`), &bad))
	_, err = MockLeadsOf(bad)
	assert.ErrorContains(t, err, "title must be a string")

	var analytics Value
	require.NoError(t, json.Unmarshal([]byte(`{"replies":3,"meetings":1,"openRate":61.5,"replyRate":9}`), &analytics))
	a, err := MockAnalyticsOf(analytics)
	require.NoError(t, err)
	assert.Equal(t, MockAnalytics{Replies: 3, Meetings: 1, OpenRate: 61.5, ReplyRate: 9}, a)

	_, err = MockAnalyticsOf(List())
	assert.Error(t, err)
	_, err = MockCompaniesOf(List(Number(1)))
	assert.ErrorContains(t, err, "item 0")
}
