package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Kart anahtarları NFC etiketine yazılan URL'de kullanıldığı için okunabilir
// olmalı: sadece büyük harf ve rakam (base36).
const cardKeyCharset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

const randomStringCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateCardKey verilen uzunlukta büyük harf base36 kart anahtarı üretir.
func GenerateCardKey(length int) (string, error) {
	return randomFromCharset(length, cardKeyCharset)
}

// GenerateSecureRandomString verilen uzunlukta alfanümerik rastgele dizi üretir.
func GenerateSecureRandomString(length int) (string, error) {
	return randomFromCharset(length, randomStringCharset)
}

func randomFromCharset(length int, charset string) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("geçersiz uzunluk: %d", length)
	}
	max := big.NewInt(int64(len(charset)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("rastgele değer üretilemedi: %w", err)
		}
		out[i] = charset[n.Int64()]
	}
	return string(out), nil
}
