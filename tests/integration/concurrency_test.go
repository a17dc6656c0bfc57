package integration

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Concurrent deposits to the same account must all be credited exactly once.
func TestIntegration_ConcurrentTopups(t *testing.T) {
	app := newTestApp(t)

	acct := app.register(t, "hotwallet")
	app.seedSettings(t, uuid.New(), uuid.New(), uuid.New(), 100)

	const workers = 20
	const perDeposit = int64(100)

	var wg sync.WaitGroup
	errCh := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			body := fmt.Sprintf(`{"amount": %d, "currency": "NHB"}`, perDeposit)
			req, err := http.NewRequest(http.MethodPost, app.server.URL+"/api/v1/accounts/topup", strings.NewReader(body))
			if err != nil {
				errCh <- err
				return
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+acct.Token)

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				errCh <- err
				return
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				errCh <- fmt.Errorf("topup returned %d", resp.StatusCode)
			}
		}()
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		require.NoError(t, err)
	}

	assert.Equal(t, int64(workers)*perDeposit, app.balance(t, acct))
}
