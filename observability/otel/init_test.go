package otel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseHeaders(t *testing.T) {
	headers := ParseHeaders(" authorization = Bearer abc , x-tenant=market,,broken, =novalue")
	require.Equal(t, map[string]string{
		"authorization": "Bearer abc",
		"x-tenant":      "market",
	}, headers)
	require.Empty(t, ParseHeaders(""))
}

func TestInitWithoutExportersIsNoop(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{ServiceName: "market-cli"})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestInitValidation(t *testing.T) {
	_, err := Init(context.Background(), Config{Traces: true})
	require.Error(t, err)

	_, err = Init(context.Background(), Config{ServiceName: "market-cli", Traces: true, SampleRatio: 1.5})
	require.Error(t, err)
}

func TestResourceAttrs(t *testing.T) {
	attrs := resourceAttrs(Config{ServiceName: "market-cli", Environment: "devnet", ProgramID: "prog"})
	require.Len(t, attrs, 3)
	require.Equal(t, "prog", attrs[2].Value.AsString())
}
