package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNominatimClient_Search(t *testing.T) {
	var gotQuery, gotCountry, gotLimit, gotLanguage string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotCountry = r.URL.Query().Get("countrycodes")
		gotLimit = r.URL.Query().Get("limit")
		gotLanguage = r.Header.Get("Accept-Language")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"display_name":"Dhanmondi, Dhaka","lat":"23.7465123456","lon":"90.3760","type":"suburb"},
			{"display_name":"broken","lat":"north","lon":"90.0","type":"x"},
			{"display_name":"Mirpur, Dhaka","lat":"23.8223","lon":"90.3654","type":"suburb"}
		]`))
	}))
	defer server.Close()

	client := NewNominatimClient(server.URL, "bd", "bn")
	candidates, err := client.Search(context.Background(), " dhanmondi ")
	require.NoError(t, err)

	assert.Equal(t, "dhanmondi", gotQuery)
	assert.Equal(t, "bd", gotCountry)
	assert.Equal(t, "5", gotLimit)
	assert.Equal(t, "bn,en", gotLanguage)

	require.Len(t, candidates, 2)
	assert.Equal(t, "Dhanmondi, Dhaka", candidates[0].DisplayName)
	assert.Equal(t, 23.746512, candidates[0].Lat)
	assert.Equal(t, 90.376, candidates[0].Lng)
	assert.Equal(t, "suburb", candidates[0].Type)
}

func TestNominatimClient_LimitsCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"display_name":"1","lat":"1","lon":"1"},{"display_name":"2","lat":"2","lon":"2"},
			{"display_name":"3","lat":"3","lon":"3"},{"display_name":"4","lat":"4","lon":"4"},
			{"display_name":"5","lat":"5","lon":"5"},{"display_name":"6","lat":"6","lon":"6"}
		]`))
	}))
	defer server.Close()

	candidates, err := NewNominatimClient(server.URL, "", "").Search(context.Background(), "x")
	require.NoError(t, err)
	assert.Len(t, candidates, MaxCandidates)
}

func TestNominatimClient_EmptyQuery(t *testing.T) {
	client := NewNominatimClient("http://127.0.0.1:0", "bd", "bn")
	candidates, err := client.Search(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestNominatimClient_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := NewNominatimClient(server.URL, "bd", "bn").Search(context.Background(), "dhaka")
	assert.Error(t, err)
}
