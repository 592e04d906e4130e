//go:build integration

package virusscan

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/quay/zlog"
)

func integrationClamd(t *testing.T) *ClamdScanner {
	t.Helper()
	addr := os.Getenv("CLAMD_ADDRESS")
	if addr == "" {
		addr = "127.0.0.1:3310"
	}
	c, err := NewClamd("tcp", addr, WithTimeout(60*time.Second))
	if err != nil {
		t.Fatalf("failed to create clamd scanner: %v", err)
	}
	return c
}

func TestIntegrationPing(t *testing.T) {
	ctx := zlog.Test(context.Background(), t)
	if err := integrationClamd(t).Ping(ctx); err != nil {
		t.Fatalf("Ping error: %v", err)
	}
}

func TestIntegrationVersion(t *testing.T) {
	ctx := zlog.Test(context.Background(), t)
	v, err := integrationClamd(t).Version(ctx)
	if err != nil {
		t.Fatalf("Version error: %v", err)
	}
	if v == "" {
		t.Error("expected non-empty version")
	}
	t.Logf("Version: %s", v)
}

func TestIntegrationScanClean(t *testing.T) {
	ctx := zlog.Test(context.Background(), t)
	verdict, err := integrationClamd(t).Scan(ctx, []byte("hello, world\n"), "hello.txt")
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if !verdict.IsClean() {
		t.Errorf("expected clean, got %+v", verdict)
	}
}

func TestIntegrationScanEICAR(t *testing.T) {
	ctx := zlog.Test(context.Background(), t)
	verdict, err := integrationClamd(t).Scan(ctx, EICAR, "eicar.txt")
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if !verdict.IsInfected() {
		t.Fatal("expected the EICAR test file to be detected")
	}
	t.Logf("Threat: %s", verdict.Threat)
}
