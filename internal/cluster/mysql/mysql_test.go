package mysql_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/dbsandbox/internal/cluster"
	"github.com/slok/dbsandbox/internal/cluster/mysql"
)

func TestResultFetchOne(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	res := mysql.NewResult(mysql.Row{"ONLINE", "3310"}, mysql.Row{"RECOVERING", "3320"})

	r, err := res.FetchOne()
	require.NoError(err)
	v, err := r.GetString(0)
	require.NoError(err)
	assert.Equal("ONLINE", v)

	r, err = res.FetchOne()
	require.NoError(err)
	v, err = r.GetString(1)
	require.NoError(err)
	assert.Equal("3320", v)

	_, err = r.GetString(2)
	assert.Error(err)

	r, err = res.FetchOne()
	require.NoError(err)
	assert.Nil(r)
}

func TestOpenerOpenUnreachable(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	o, err := mysql.NewOpener(mysql.OpenerConfig{DialTimeout: time.Second})
	require.NoError(err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Port 1 is privileged and never has a server in test environments.
	_, err = o.Open(ctx, cluster.ConnOptions{Host: "127.0.0.1", Port: 1, User: "root"})
	assert.Error(err)
}
