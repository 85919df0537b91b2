package concur_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/concur-accruals/internal/concur"
)

func TestCredentials_Validate(t *testing.T) {
	t.Parallel()

	require.NoError(t, testCreds("https://example.test/oauth2/v0/token").Validate())

	err := concur.Credentials{ClientID: "id", RefreshToken: " "}.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, concur.ErrInvalidCredential)
	assert.Contains(t, err.Error(), "token URL is required")
	assert.Contains(t, err.Error(), "client secret is required")
	assert.Contains(t, err.Error(), "refresh token is required")
	assert.NotContains(t, err.Error(), "client ID is required")
}

func TestItem_Accessors(t *testing.T) {
	t.Parallel()

	var item concur.Item
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": " u-1 ",
		"transactionId": 42,
		"active": true,
		"amount": {"value": "12.50"},
		"emails": [{"value": ""}, "junk", {"value": "a@example.test"}]
	}`), &item))

	assert.Equal(t, "u-1", item.ID())
	assert.Equal(t, "42", item.ID("transactionId"))
	assert.Equal(t, "u-1", item.ID("missing", "id"))
	assert.Equal(t, "", item.ID("missing"))
	assert.Equal(t, "true", item.String("active"))

	amount := item.Object("amount")
	require.NotNil(t, amount)
	v, ok := amount.Number("value")
	assert.True(t, ok)
	assert.InDelta(t, 12.5, v, 0.0001)

	assert.Nil(t, item.Object("id"))
	assert.Len(t, item.List("emails"), 2)
	assert.Nil(t, item.List("amount"))
	assert.Equal(t, "a@example.test", concur.PrimaryEmail(item))
}

func TestPayload_Counts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		payload   concur.Payload
		wantTotal int
		wantOK    bool
	}{
		{name: "json number", payload: concur.Payload{"totalResults": json.Number("120")}, wantTotal: 120, wantOK: true},
		{name: "string", payload: concur.Payload{"totalResults": "7"}, wantTotal: 7, wantOK: true},
		{name: "float", payload: concur.Payload{"totalResults": float64(3)}, wantTotal: 3, wantOK: true},
		{name: "absent", payload: concur.Payload{}},
		{name: "not numeric", payload: concur.Payload{"totalResults": "many"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := tt.payload.TotalResults()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantTotal, got)
		})
	}

	ipp, ok := concur.Payload{"itemsPerPage": json.Number("50")}.ItemsPerPage()
	assert.True(t, ok)
	assert.Equal(t, 50, ipp)
}

func TestAttributeSet(t *testing.T) {
	t.Parallel()

	set := concur.NewAttributeSet(" id", "userName", "", "id", "emails.value ")
	assert.Equal(t, concur.AttributeSet{"id", "userName", "emails.value"}, set)
	assert.Equal(t, "id,userName,emails.value", set.String())
	assert.Equal(t, set, concur.ParseAttributeSet("id, userName,,emails.value"))

	assert.True(t, set.Contains("userName"))
	assert.False(t, set.Contains("username"))

	narrowed := set.Without("userName")
	assert.Equal(t, concur.AttributeSet{"id", "emails.value"}, narrowed)
	assert.Len(t, set, 3, "Without must not modify the receiver")

	assert.True(t, narrowed.SubsetOf(set))
	assert.False(t, set.SubsetOf(narrowed))
	assert.True(t, set.Equal(concur.NewAttributeSet("id", "userName", "emails.value")))
	assert.False(t, set.Equal(concur.NewAttributeSet("userName", "id", "emails.value")))

	assert.True(t, concur.DefaultSafeUserAttributes.SubsetOf(concur.DefaultUserAttributes))
	assert.Empty(t, concur.ParseAttributeSet(""))
}
