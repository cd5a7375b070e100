package repositories

import "errors"

// ErrNotFound kayıt bulunamadığında repository katmanından dönen ortak hatadır.
// Servis katmanı bu hatayı kendi tipli hatalarına çevirir.
var ErrNotFound = errors.New("kayıt bulunamadı")
