// Package legacystore eski tek-cihaz tasarımından kalan, "card_<cardId>"
// anahtarlarıyla JSON kayıt tutan yerel depoyu temsil eder. Depo yalnızca
// migrasyon kaynağı ve birincil depo erişilemediğinde son çare okuma yolu
// olarak kullanılır; kalıcı kayıt her zaman veritabanındadır.
package legacystore

import "errors"

// CardKeyPrefix eski depodaki kartvizit kayıtlarının anahtar önekidir.
const CardKeyPrefix = "card_"

// ErrKeyNotFound istenen anahtar depoda bulunamadığında döner.
var ErrKeyNotFound = errors.New("legacystore: anahtar bulunamadı")

// Store eski yerel deponun arayüzüdür. Global erişim yerine bağımlılık olarak
// enjekte edilir; böylece testlerde bellek içi implementasyon kullanılabilir.
type Store interface {
	// Keys depodaki tüm anahtarları döndürür (sıra garantisi yoktur).
	Keys() ([]string, error)
	// Get anahtarın değerini döndürür; yoksa ErrKeyNotFound.
	Get(key string) ([]byte, error)
	// Set anahtarı verilen değerle yazar (üzerine yazar).
	Set(key string, value []byte) error
	// Remove anahtarı siler; olmayan anahtar için hata dönmez.
	Remove(key string) error
}
