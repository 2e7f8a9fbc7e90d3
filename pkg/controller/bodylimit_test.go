package controller_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"referralflow/pkg/controller"

	"github.com/stretchr/testify/require"
)

func TestWithBodyLimit(t *testing.T) {
	var (
		read int
		err  error
	)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var data []byte
		data, err = io.ReadAll(r.Body)
		read = len(data)
	})
	h := controller.WithBodyLimit(8, next)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader("12345678")))
	require.NoError(t, err)
	require.Equal(t, 8, read)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader("123456789")))
	var tooLarge *http.MaxBytesError
	require.True(t, errors.As(err, &tooLarge))
	require.EqualValues(t, 8, tooLarge.Limit)
}
