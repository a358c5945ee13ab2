package proposal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/process-raci/internal/domain"
)

func TestProposeDecodesCandidate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		var req Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "simplify", req.Instruction)
		assert.Equal(t, "p1", req.Process.ID)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"title":"Quote","steps":[
			{"id":"start","type":"start","label":"Start"},
			{"id":"a","type":"action","label":"Send","departmentId":null,"roleId":null,"draftDepartmentName":"Sales","draftRoleName":"Rep"},
			{"id":"finish","type":"finish","label":"Finish"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", time.Second)
	candidate, err := c.Propose(context.Background(), Request{Instruction: "simplify", Process: domain.Process{ID: "p1"}})
	require.NoError(t, err)
	assert.Equal(t, "Quote", candidate.Title)
	require.Len(t, candidate.Steps, 3)
	a := candidate.Steps[1].(domain.ActionStep)
	assert.Equal(t, "Sales", domain.StringValue(a.DraftDepartmentName))
	assert.Nil(t, a.DepartmentID)
}

func TestProposeErrors(t *testing.T) {
	_, err := NewClient("", "", 0).Propose(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrDisabled)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()
	_, err = NewClient(srv.URL, "", time.Second).Propose(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrBadResponse)

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"title":"x","steps":[{"id":"q","type":"loop"}]}`))
	}))
	defer bad.Close()
	_, err = NewClient(bad.URL, "", time.Second).Propose(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrBadResponse)
}
