package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRedisCache_Get_Hit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	cache := NewRedisCacheFromClient(db, 3600, "test:")

	mock.ExpectGet("test:mykey").SetVal("myvalue")

	val, ok := cache.Get("mykey")
	if !ok {
		t.Error("Expected cache hit")
	}
	if val != "myvalue" {
		t.Errorf("Expected 'myvalue', got %q", val)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestRedisCache_Get_Miss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	cache := NewRedisCacheFromClient(db, 3600, "test:")

	mock.ExpectGet("test:mykey").RedisNil()

	val, ok := cache.Get("mykey")
	if ok {
		t.Error("Expected cache miss")
	}
	if val != "" {
		t.Errorf("Expected empty string, got %q", val)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestRedisCache_Set(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	cache := NewRedisCacheFromClient(db, 3600, "test:")

	mock.ExpectSet("test:mykey", "myvalue", 3600*time.Second).SetVal("OK")

	err := cache.Set("mykey", "myvalue")
	if err != nil {
		t.Errorf("Set failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestRedisCache_Set_NoTTL(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	cache := NewRedisCacheFromClient(db, 0, "test:")

	mock.ExpectSet("test:mykey", "myvalue", 0).SetVal("OK")

	err := cache.Set("mykey", "myvalue")
	if err != nil {
		t.Errorf("Set failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestRedisCache_KeyPrefix(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	cache := NewRedisCacheFromClient(db, 3600, "duallang:v1:")

	// Verify prefix is applied
	mock.ExpectGet("duallang:v1:hash123").SetVal("translated")

	val, ok := cache.Get("hash123")
	if !ok || val != "translated" {
		t.Errorf("Expected 'translated', got %q (ok=%v)", val, ok)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestRedisCache_Ping(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	cache := NewRedisCacheFromClient(db, 3600, "test:")

	mock.ExpectPing().SetVal("PONG")

	err := cache.Ping()
	if err != nil {
		t.Errorf("Ping failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestRedisCache_Close(t *testing.T) {
	db, mock := redismock.NewClientMock()

	cache := NewRedisCacheFromClient(db, 3600, "test:")

	// Close should work without error
	err := cache.Close()
	if err != nil {
		t.Errorf("Close failed: %v", err)
	}

	_ = mock // Silence unused warning
}

func TestRedisCache_DefaultPrefix(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	cache := NewRedisCacheFromClient(db, 0, "")
	mock.ExpectGet("duallang:k").SetVal("v")

	if val, ok := cache.Get("k"); !ok || val != "v" {
		t.Errorf("Expected default prefix lookup, got %q (ok=%v)", val, ok)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestRedisCache_Get_ErrorIsLoggedMiss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	core, logs := observer.New(zap.DebugLevel)
	cache := NewRedisCacheFromClient(db, 0, "test:").WithLogger(zap.New(core))

	mock.ExpectGet("test:k").SetErr(errors.New("connection reset"))

	if _, ok := cache.Get("k"); ok {
		t.Error("Expected miss on error")
	}
	if logs.FilterMessage("redis get failed").Len() != 1 {
		t.Error("Expected the failure to be logged")
	}
}

func TestRedisCache_Entries(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	cache := NewRedisCacheFromClient(db, 0, "test:")

	mock.ExpectScan(0, "test:*", 500).SetVal([]string{"test:a", "test:b"}, 7)
	mock.ExpectMGet("test:a", "test:b").SetVal([]interface{}{"1", nil})
	mock.ExpectScan(7, "test:*", 500).SetVal([]string{"test:c"}, 0)
	mock.ExpectMGet("test:c").SetVal([]interface{}{"3"})

	entries, err := cache.Entries()
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}

	if len(entries) != 2 || entries["a"] != "1" || entries["c"] != "3" {
		t.Errorf("entries = %v", entries)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestRedisCache_EntriesScanError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	cache := NewRedisCacheFromClient(db, 0, "test:")
	mock.ExpectScan(0, "test:*", 500).SetErr(errors.New("boom"))

	if _, err := cache.Entries(); err == nil {
		t.Error("Expected scan error")
	}
}
