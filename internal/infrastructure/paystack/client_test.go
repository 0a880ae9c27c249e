package paystack

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeTransaction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))

		var body InitializeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, int64(450000), body.Amount)
		assert.Equal(t, "pkg-1", body.Metadata["packageId"])

		_, _ = io.WriteString(w, `{"status":true,"message":"ok","data":{"authorization_url":"https://checkout/abc","access_code":"ac","reference":"ref-1"}}`)
	}))
	defer srv.Close()

	c := NewClient("sk_test", srv.URL+"/", srv.Client())
	out, err := c.InitializeTransaction(context.Background(), InitializeRequest{
		Email: "a@x.com", Amount: 450000, Metadata: map[string]string{"packageId": "pkg-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://checkout/abc", out.AuthorizationURL)
	assert.Equal(t, "ref-1", out.Reference)
}

func TestVerifyTransaction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/verify/ref-1", r.URL.Path)
		_, _ = io.WriteString(w, `{"status":true,"message":"ok","data":{"reference":"ref-1","status":"success","amount":700000}}`)
	}))
	defer srv.Close()

	tx, err := NewClient("sk_test", srv.URL, nil).VerifyTransaction(context.Background(), "ref-1")
	require.NoError(t, err)
	assert.Equal(t, "success", tx.Status)
	assert.Equal(t, int64(700000), tx.Amount)
}

func TestClientErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/transaction/verify/bad-json":
			_, _ = io.WriteString(w, `<html>`)
		default:
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"status":false,"message":"Invalid key"}`)
		}
	}))
	defer srv.Close()

	c := NewClient("sk_test", srv.URL, srv.Client())
	_, err := c.VerifyTransaction(context.Background(), "ref-1")
	assert.ErrorIs(t, err, ErrGateway)
	assert.Contains(t, err.Error(), "Invalid key")

	_, err = c.VerifyTransaction(context.Background(), "bad-json")
	assert.ErrorIs(t, err, ErrGateway)

	_, err = NewClient("", srv.URL, nil).InitializeTransaction(context.Background(), InitializeRequest{})
	assert.ErrorIs(t, err, ErrNotConfigured)

	srv.Close()
	_, err = c.VerifyTransaction(context.Background(), "ref-1")
	assert.ErrorIs(t, err, ErrGateway)
}

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"event":"charge.success","data":{"reference":"ref-1"}}`)
	sig := hex.EncodeToString(Sign("sk_test", body))

	c := NewClient("sk_test", "", nil)
	assert.True(t, c.VerifySignature(body, sig))
	assert.False(t, c.VerifySignature(body, "deadbeef"))
	assert.False(t, c.VerifySignature(body, "not-hex"))
	assert.False(t, c.VerifySignature(append(body, ' '), sig))
	assert.False(t, VerifySignature("", body, sig))
	assert.False(t, VerifySignature("sk_test", body, ""))
}

func TestParseEvent(t *testing.T) {
	ev, err := ParseEvent([]byte(`{"event":"charge.success","data":{"reference":"ref-1","status":"success","amount":450000,"metadata":{"packageId":"p-1","type":"package","attempt":2,"nested":{"x":1}}}}`))
	require.NoError(t, err)
	assert.Equal(t, EventChargeSuccess, ev.Event)
	assert.Equal(t, "ref-1", ev.Data.Reference)
	assert.Equal(t, "p-1", ev.Data.Metadata["packageId"])
	assert.Equal(t, "2", ev.Data.Metadata["attempt"])
	_, hasNested := ev.Data.Metadata["nested"]
	assert.False(t, hasNested)

	ev, err = ParseEvent([]byte(`{"event":"transfer.success","data":{"metadata":""}}`))
	require.NoError(t, err)
	assert.Nil(t, ev.Data.Metadata)

	_, err = ParseEvent([]byte(`not json`))
	assert.Error(t, err)
}
