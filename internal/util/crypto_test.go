package util

import (
	"strings"
	"testing"
)

// ============ 随机字符串测试 ============

func TestRandomString(t *testing.T) {
	str, err := RandomString(32)
	if err != nil {
		t.Fatalf("生成失败: %v", err)
	}
	if len(str) != 32 {
		t.Errorf("长度错误: 期望32，实际%d", len(str))
	}

	// 测试唯一性
	str2, _ := RandomString(32)
	if str == str2 {
		t.Error("应生成不同的随机字符串")
	}

	// 测试无效长度
	if _, err := RandomString(0); err == nil {
		t.Error("长度0应返回错误")
	}
	if _, err := RandomString(-5); err == nil {
		t.Error("负数长度应返回错误")
	}
}

func TestHashToken(t *testing.T) {
	a := HashToken("reset-token")
	if len(a) != 64 {
		t.Errorf("hex sha256 应为64位，实际%d", len(a))
	}
	if a != HashToken("reset-token") {
		t.Error("相同令牌应得到相同摘要")
	}
	if a == HashToken("other-token") {
		t.Error("不同令牌应得到不同摘要")
	}
}

// ============ AES 加密测试 ============

func TestEncryptDecryptAES(t *testing.T) {
	key := "test-encryption-key"

	testCases := []string{
		"Hello World",
		`{"id":"dev","email":"a@b.com"}`,
		"",
		"Special!@#$%^&*()",
		strings.Repeat("A", 1000),
	}

	for _, plaintext := range testCases {
		encrypted, err := EncryptAES(key, []byte(plaintext))
		if err != nil {
			t.Fatalf("加密失败 '%s': %v", plaintext, err)
		}

		decrypted, err := DecryptAES(key, encrypted)
		if err != nil {
			t.Fatalf("解密失败 '%s': %v", plaintext, err)
		}

		if string(decrypted) != plaintext {
			t.Errorf("数据不匹配\n期望: %s\n实际: %s", plaintext, string(decrypted))
		}
	}
}

func TestEncryptAES_DifferentKeys(t *testing.T) {
	plaintext := []byte("Secret Data")

	encrypted1, _ := EncryptAES("key1", plaintext)
	encrypted2, _ := EncryptAES("key2", plaintext)

	if string(encrypted1) == string(encrypted2) {
		t.Error("不同密钥应生成不同密文")
	}
}

func TestDecryptAES_WrongKey(t *testing.T) {
	encrypted, _ := EncryptAES("correct-key", []byte("Data"))

	if _, err := DecryptAES("wrong-key", encrypted); err == nil {
		t.Error("错误密钥应解密失败")
	}
}

func TestDecryptAES_InvalidData(t *testing.T) {
	key := "test-key"

	// 数据太短
	if _, err := DecryptAES(key, []byte{1, 2, 3}); err == nil {
		t.Error("过短数据应返回错误")
	}

	// 空数据
	if _, err := DecryptAES(key, []byte{}); err == nil {
		t.Error("空数据应返回错误")
	}
}

// ============ 性能测试 ============

func BenchmarkEncryptAES(b *testing.B) {
	key := "bench-key"
	data := []byte("Benchmark data")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		EncryptAES(key, data)
	}
}

func BenchmarkDecryptAES(b *testing.B) {
	key := "bench-key"
	data := []byte("Benchmark data")
	encrypted, _ := EncryptAES(key, data)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		DecryptAES(key, encrypted)
	}
}
