package service

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/sangkips/devis-eau-api/internal/domain/entity"
	"github.com/sangkips/devis-eau-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedLock_RespectsContext(t *testing.T) {
	locks := newKeyedLock()
	release, err := locks.Acquire(context.Background(), "CITERNAGE")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = locks.Acquire(ctx, "CITERNAGE")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	other, err := locks.Acquire(context.Background(), "VOL")
	require.NoError(t, err)
	other()

	release()
	again, err := locks.Acquire(context.Background(), "CITERNAGE", "VOL")
	require.NoError(t, err)
	again()
}

func TestTariffService_ConcurrentCreatesKeepOneActive(t *testing.T) {
	env := newTestEnv(t)
	from := testNow.AddDate(0, -1, 0)

	const writers = 5
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.tariffs.CreateTariff(context.Background(), &TariffInput{
				ServiceType:      "ESSAI",
				UnitPriceExclTax: dec("30"),
				TaxRate:          dec("0.19"),
				ValidFrom:        &from,
			})
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.Equal(t, http.StatusConflict, apperror.GetAppError(err).Code)
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, int64(1), env.countRows(t, &entity.Tariff{}))
}
