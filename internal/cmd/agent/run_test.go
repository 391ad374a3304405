package agentrun

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/iamnno/IES/internal/telemetry"
	logpkg "github.com/iamnno/IES/pkg/log"
)

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestRunReplaysAllRowsPlusFinalZeroFill(t *testing.T) {
	var mu sync.Mutex
	var total int
	hub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var batch []telemetry.WireRecord
		if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
			t.Errorf("decode: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		mu.Lock()
		total += len(batch)
		mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	}))
	defer hub.Close()

	opts := Options{
		AccPath:     writeCSV(t, "acc.csv", "x,y,z\n0.1,0.2,9.8\n0.2,0.1,14.0\n"),
		GpsPath:     writeCSV(t, "gps.csv", "latitude,longitude\n50.1,30.1\n"),
		ParkingPath: writeCSV(t, "parking.csv", "spot,lat,lng\n1,50.1,30.1\n1,50.2,30.2\n1,50.3,30.3\n"),
		HubURL:      hub.URL,
		UserID:      7,
		Interval:    time.Millisecond,
		BatchSize:   2,
	}
	if err := Run(context.Background(), opts, logpkg.NewLogger(logpkg.WithLevel(logpkg.ErrorLevel))); err != nil {
		t.Fatalf("run: %v", err)
	}

	// max(2,1,3)+1 productive ticks, every one forwarded.
	mu.Lock()
	defer mu.Unlock()
	if total != 4 {
		t.Fatalf("want 4 records delivered, got %d", total)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	hub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	defer hub.Close()

	rows := "x,y,z\n"
	for i := 0; i < 1000; i++ {
		rows += "0.1,0.2,9.8\n"
	}
	opts := Options{
		AccPath:     writeCSV(t, "acc.csv", rows),
		GpsPath:     writeCSV(t, "gps.csv", "latitude,longitude\n50.1,30.1\n"),
		ParkingPath: writeCSV(t, "parking.csv", "spot,lat,lng\n1,50.1,30.1\n"),
		HubURL:      hub.URL,
		UserID:      7,
		Interval:    50 * time.Millisecond,
		BatchSize:   10,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()
	err := Run(ctx, opts, logpkg.NewLogger(logpkg.WithLevel(logpkg.ErrorLevel)))
	if err == nil || ctx.Err() == nil {
		t.Fatalf("expected cancellation, got %v", err)
	}
}

func TestRunRequiresUserID(t *testing.T) {
	opts := Options{UserID: 0}
	if err := Run(context.Background(), opts, nil); err == nil {
		t.Fatalf("expected user id error")
	}
}

func TestRunFailsOnMissingFeed(t *testing.T) {
	opts := Options{
		AccPath: filepath.Join(t.TempDir(), "missing.csv"),
		UserID:  7,
	}
	if err := Run(context.Background(), opts, nil); err == nil {
		t.Fatalf("expected open error")
	}
}
