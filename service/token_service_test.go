package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

func newTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()}), mr
}

func TestTokenService_StoreAndGet(t *testing.T) {
	rdb, _ := newTestRedis(t)
	ts := NewTokenService(rdb)
	ctx := context.Background()

	token, err := ts.GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if len(token) != 64 {
		t.Fatalf("expected 32 random bytes hex-encoded, got %d chars", len(token))
	}

	if err := ts.StoreToken(ctx, token, 42, time.Hour); err != nil {
		t.Fatalf("StoreToken: %v", err)
	}

	uid, err := ts.GetUserIDByToken(ctx, token)
	if err != nil {
		t.Fatalf("GetUserIDByToken: %v", err)
	}
	if uid != 42 {
		t.Fatalf("expected uid 42, got %d", uid)
	}

	tokens, err := ts.ListUserTokens(ctx, 42)
	if err != nil {
		t.Fatalf("ListUserTokens: %v", err)
	}
	if len(tokens) != 1 || tokens[0] != token {
		t.Fatalf("expected [%s], got %#v", token, tokens)
	}
}

func TestTokenService_GetExpired(t *testing.T) {
	rdb, mr := newTestRedis(t)
	ts := NewTokenService(rdb)
	ctx := context.Background()

	if err := ts.StoreToken(ctx, "tok", 42, time.Minute); err != nil {
		t.Fatalf("StoreToken: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := ts.GetUserIDByToken(ctx, "tok"); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestTokenService_RevokeToken(t *testing.T) {
	rdb, _ := newTestRedis(t)
	ts := NewTokenService(rdb)
	ctx := context.Background()

	if err := ts.StoreToken(ctx, "tok", 42, time.Hour); err != nil {
		t.Fatalf("StoreToken: %v", err)
	}
	if err := ts.RevokeToken(ctx, "tok"); err != nil {
		t.Fatalf("RevokeToken: %v", err)
	}
	if _, err := ts.GetUserIDByToken(ctx, "tok"); err == nil {
		t.Fatal("expected error after revoke")
	}
}

func TestTokenService_RevokeAllTokensByUser(t *testing.T) {
	rdb, _ := newTestRedis(t)
	ts := NewTokenService(rdb)
	ctx := context.Background()

	// 多端登录：两个 token 都有效
	for _, tok := range []string{"tok1", "tok2"} {
		if err := ts.StoreToken(ctx, tok, 42, time.Hour); err != nil {
			t.Fatalf("StoreToken(%s): %v", tok, err)
		}
	}

	if err := ts.RevokeAllTokensByUser(ctx, 42); err != nil {
		t.Fatalf("RevokeAllTokensByUser: %v", err)
	}

	for _, tok := range []string{"tok1", "tok2"} {
		if _, err := ts.GetUserIDByToken(ctx, tok); err == nil {
			t.Fatalf("token %s should be revoked", tok)
		}
	}
	tokens, err := ts.ListUserTokens(ctx, 42)
	if err != nil {
		t.Fatalf("ListUserTokens: %v", err)
	}
	if len(tokens) != 0 {
		t.Fatalf("expected empty token set, got %#v", tokens)
	}
}

func TestTokenService_NilClient(t *testing.T) {
	ts := NewTokenService(nil)
	if err := ts.StoreToken(context.Background(), "tok", 1, time.Hour); err == nil {
		t.Fatal("expected error with nil redis client")
	}
}
