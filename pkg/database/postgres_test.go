package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/coaching-admin-api/pkg/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "coaching_admin", SSLMode: "disable"})
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=coaching_admin sslmode=disable", dsn)
}

func TestWithTimeout(t *testing.T) {
	ctx, cancel := WithTimeout(context.Background(), 0)
	defer cancel()
	_, ok := ctx.Deadline()
	assert.False(t, ok)

	bounded, cancelBounded := WithTimeout(context.Background(), time.Minute)
	defer cancelBounded()
	deadline, ok := bounded.Deadline()
	assert.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, time.Second)
}
