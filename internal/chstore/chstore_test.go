package chstore

import (
	"Go2FlavorSpectra/internal/config"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableName(t *testing.T) {
	name, err := TableName("")
	require.NoError(t, err)
	assert.Equal(t, DefaultTable, name)

	name, err = TableName("tcp_samples_v2")
	require.NoError(t, err)
	assert.Equal(t, "tcp_samples_v2", name)

	for _, bad := range []string{"samples; DROP TABLE x", "1samples", "db.samples"} {
		_, err = TableName(bad)
		assert.Error(t, err, bad)
	}
}

func TestAddr(t *testing.T) {
	assert.Equal(t, "ch.local:9000", Addr(config.ClickHouseConfig{Host: "ch.local", Port: 9000}))
}
