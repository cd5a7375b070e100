package services

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"regexp"
	"sort"
	"sync"
	"testing"
	"time"

	"echotap.link/configs/configslog"
	"echotap.link/models"
	"echotap.link/pkg/legacystore"
	"echotap.link/pkg/queryparams"
	"echotap.link/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	configslog.InitLogger()
	os.Exit(m.Run())
}

// fakeCardRepo ICardRepository'nin bellek içi test implementasyonudur.
// failErr set edildiğinde tüm işlemler bu hata ile döner; böylece birincil
// depo kesintisi simüle edilir.
type fakeCardRepo struct {
	mu        sync.Mutex
	docs      map[string]models.Card
	failErr   error
	existsAll bool // CountByCardID her anahtarı kullanımda sayar (çakışma testi)
}

func newFakeCardRepo() *fakeCardRepo {
	return &fakeCardRepo{docs: make(map[string]models.Card)}
}

func (r *fakeCardRepo) FindByDocKey(_ context.Context, docKey string) (*models.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return nil, r.failErr
	}
	card, ok := r.docs[docKey]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &card, nil
}

func (r *fakeCardRepo) FindFirstByCardID(_ context.Context, cardID string) (*models.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return nil, r.failErr
	}
	keys := make([]string, 0, len(r.docs))
	for k := range r.docs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if r.docs[k].CardID == cardID {
			card := r.docs[k]
			return &card, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeCardRepo) FindAllByOwnerID(_ context.Context, ownerID uint) ([]models.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return nil, r.failErr
	}
	var cards []models.Card
	for _, card := range r.docs {
		if card.OwnerID == ownerID {
			cards = append(cards, card)
		}
	}
	return cards, nil
}

func (r *fakeCardRepo) CountByCardID(_ context.Context, cardID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return 0, r.failErr
	}
	if r.existsAll {
		return 1, nil
	}
	var count int64
	for _, card := range r.docs {
		if card.CardID == cardID {
			count++
		}
	}
	return count, nil
}

func (r *fakeCardRepo) CreateCardWithinLimit(_ context.Context, card *models.Card, limit int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return false, r.failErr
	}
	var count int64
	for _, existing := range r.docs {
		if existing.OwnerID == card.OwnerID {
			count++
		}
	}
	if count >= limit {
		return false, nil
	}
	r.docs[card.DocKey] = *card
	return true, nil
}

func (r *fakeCardRepo) UpsertCard(_ context.Context, card *models.Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return r.failErr
	}
	merged := *card
	if existing, ok := r.docs[card.DocKey]; ok {
		// created_at ve owner_id çakışma listesinde değildir.
		merged.CreatedAt = existing.CreatedAt
		merged.OwnerID = existing.OwnerID
	}
	r.docs[card.DocKey] = merged
	return nil
}

func (r *fakeCardRepo) DeleteByDocKey(_ context.Context, docKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return r.failErr
	}
	if _, ok := r.docs[docKey]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.docs, docKey)
	return nil
}

func (r *fakeCardRepo) GetAllCardsPaginated(_ context.Context, _ queryparams.ListParams) ([]models.Card, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return nil, 0, r.failErr
	}
	var cards []models.Card
	for _, card := range r.docs {
		cards = append(cards, card)
	}
	return cards, int64(len(cards)), nil
}

func (r *fakeCardRepo) GetCardCount(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return 0, r.failErr
	}
	return int64(len(r.docs)), nil
}

var _ repositories.ICardRepository = (*fakeCardRepo)(nil)

func newCardServiceForTest() (*CardService, *fakeCardRepo, *legacystore.MemoryStore) {
	repo := newFakeCardRepo()
	legacy := legacystore.NewMemoryStore()
	service := &CardService{repo: repo, legacy: legacy}
	return service, repo, legacy
}

func configuredCard(name string) models.Card {
	return models.Card{
		Name:         name,
		Bio:          "Kısa tanıtım",
		PrimaryColor: "#2563EB",
		Links: models.CardLinks{
			{Title: "Web Sitem", Path: "https://example.com", Icon: "bi-globe", IsExternal: true},
		},
		IsConfigured: true,
	}
}

func TestSaveCardCreatesAndGetCardReadsBack(t *testing.T) {
	service, _, _ := newCardServiceForTest()
	ctx := context.Background()

	saved, err := service.SaveCard(ctx, 1, "AAAA1111", configuredCard("Ayşe Yılmaz"))
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, "1_AAAA1111", saved.DocKey)
	assert.Equal(t, uint(1), saved.OwnerID)
	assert.False(t, saved.CreatedAt.IsZero())
	assert.False(t, saved.UpdatedAt.IsZero())

	got, err := service.GetCard(ctx, 1, "AAAA1111")
	require.NoError(t, err)
	assert.Equal(t, "Ayşe Yılmaz", got.Name)
	assert.Len(t, got.Links, 1)
	assert.Equal(t, "Web Sitem", got.Links[0].Title)
}

func TestSaveCardRejectsInvalidInput(t *testing.T) {
	service, _, _ := newCardServiceForTest()
	ctx := context.Background()

	cases := []struct {
		name    string
		ownerID uint
		cardID  string
	}{
		{"sahipsiz", 0, "AAAA1111"},
		{"boş anahtar", 1, ""},
		{"küçük harf", 1, "aaaa1111"},
		{"alt çizgi", 1, "AA_A1111"},
		{"aşırı uzun", 1, "AAAABBBBCCCCDDDD1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.SaveCard(ctx, tc.ownerID, tc.cardID, configuredCard("X"))
			assert.ErrorIs(t, err, ErrCardInvalidInput)
		})
	}
}

func TestSaveCardEnforcesQuota(t *testing.T) {
	service, _, _ := newCardServiceForTest()
	ctx := context.Background()

	for _, cardID := range []string{"CARD0001", "CARD0002", "CARD0003"} {
		_, err := service.SaveCard(ctx, 1, cardID, configuredCard("Kart "+cardID))
		require.NoError(t, err)
	}

	// Dördüncü yeni kart reddedilir.
	_, err := service.SaveCard(ctx, 1, "CARD0004", configuredCard("Fazla"))
	assert.ErrorIs(t, err, ErrCardQuotaExceeded)
	assert.False(t, service.CanCreateCard(ctx, 1))
	assert.Equal(t, 3, service.GetUserCardCount(ctx, 1))

	// Kota doluyken mevcut kartın güncellenmesi serbesttir.
	_, err = service.SaveCard(ctx, 1, "CARD0002", configuredCard("Güncellendi"))
	assert.NoError(t, err)

	// Silme yer açar.
	require.NoError(t, service.DeleteCard(ctx, 1, "CARD0001"))
	assert.True(t, service.CanCreateCard(ctx, 1))
	_, err = service.SaveCard(ctx, 1, "CARD0004", configuredCard("Artık Sığar"))
	assert.NoError(t, err)
}

func TestSaveCardUpdatePreservesCreatedAt(t *testing.T) {
	service, _, _ := newCardServiceForTest()
	ctx := context.Background()

	origin := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	data := configuredCard("İlk Hali")
	data.CreatedAt = origin

	created, err := service.SaveCard(ctx, 1, "AAAA1111", data)
	require.NoError(t, err)
	assert.Equal(t, origin, created.CreatedAt)

	updated, err := service.SaveCard(ctx, 1, "AAAA1111", configuredCard("Yeni Hali"))
	require.NoError(t, err)
	assert.Equal(t, origin, updated.CreatedAt, "CreatedAt güncellemede değişmemeli")
	assert.True(t, updated.UpdatedAt.After(origin), "UpdatedAt yenilenmeli")

	got, err := service.GetCard(ctx, 1, "AAAA1111")
	require.NoError(t, err)
	assert.Equal(t, "Yeni Hali", got.Name)
	assert.Equal(t, origin, got.CreatedAt)
}

func TestSameCardIDIsolatedPerOwner(t *testing.T) {
	service, _, _ := newCardServiceForTest()
	ctx := context.Background()

	_, err := service.SaveCard(ctx, 1, "SHARED01", configuredCard("Birinci Sahip"))
	require.NoError(t, err)
	_, err = service.SaveCard(ctx, 2, "SHARED01", configuredCard("İkinci Sahip"))
	require.NoError(t, err)

	first, err := service.GetCard(ctx, 1, "SHARED01")
	require.NoError(t, err)
	second, err := service.GetCard(ctx, 2, "SHARED01")
	require.NoError(t, err)
	assert.Equal(t, "Birinci Sahip", first.Name)
	assert.Equal(t, "İkinci Sahip", second.Name)

	// Birinin silinmesi diğerini etkilemez.
	require.NoError(t, service.DeleteCard(ctx, 1, "SHARED01"))
	_, err = service.GetCard(ctx, 1, "SHARED01")
	assert.ErrorIs(t, err, ErrCardNotFound)
	_, err = service.GetCard(ctx, 2, "SHARED01")
	assert.NoError(t, err)
}

func TestGetPublicCardVisibilityGate(t *testing.T) {
	service, _, _ := newCardServiceForTest()
	ctx := context.Background()

	draft := configuredCard("Taslak")
	draft.IsConfigured = false
	_, err := service.SaveCard(ctx, 1, "DRAFT001", draft)
	require.NoError(t, err)

	_, err = service.GetPublicCard(ctx, "DRAFT001")
	assert.ErrorIs(t, err, ErrCardNotConfigured)

	_, err = service.GetPublicCard(ctx, "NOCARD01")
	assert.ErrorIs(t, err, ErrCardNotFound)

	_, err = service.SaveCard(ctx, 1, "LIVE0001", configuredCard("Yayında"))
	require.NoError(t, err)
	card, err := service.GetPublicCard(ctx, "LIVE0001")
	require.NoError(t, err)
	assert.Equal(t, "Yayında", card.Name)
}

func TestGetCardNotFoundDoesNotFallBackToLegacy(t *testing.T) {
	service, _, legacy := newCardServiceForTest()
	ctx := context.Background()

	// Eski depoda kayıt var ama birincil depo sağlıklı ve kartı tanımıyor:
	// cevap NotFound olmalı, bayat yerel kopya asla dönmemeli.
	blob, _ := json.Marshal(configuredCard("Bayat Kopya"))
	require.NoError(t, legacy.Set("card_GHOST001", blob))

	_, err := service.GetCard(ctx, 1, "GHOST001")
	assert.ErrorIs(t, err, ErrCardNotFound)
	_, err = service.GetPublicCard(ctx, "GHOST001")
	assert.ErrorIs(t, err, ErrCardNotFound)
}

func TestLegacyFallbackOnPrimaryStoreFailure(t *testing.T) {
	service, repo, legacy := newCardServiceForTest()
	ctx := context.Background()

	legacyCard := configuredCard("Yerel Kopya")
	legacyCard.CardID = "LOCAL001"
	blob, _ := json.Marshal(legacyCard)
	require.NoError(t, legacy.Set("card_LOCAL001", blob))

	repo.failErr = errors.New("bağlantı koptu")

	got, err := service.GetCard(ctx, 1, "LOCAL001")
	require.NoError(t, err)
	assert.Equal(t, "Yerel Kopya", got.Name)

	pub, err := service.GetPublicCard(ctx, "LOCAL001")
	require.NoError(t, err)
	assert.Equal(t, "Yerel Kopya", pub.Name)

	// Yerel kopyası olmayan kart için hata aynen yüzeye çıkar.
	_, err = service.GetCard(ctx, 1, "MISSING1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCardNotFound)
}

func TestLegacyFallbackRespectsVisibilityGate(t *testing.T) {
	service, repo, legacy := newCardServiceForTest()
	ctx := context.Background()

	draft := configuredCard("Yerel Taslak")
	draft.IsConfigured = false
	blob, _ := json.Marshal(draft)
	require.NoError(t, legacy.Set("card_LOCAL001", blob))

	repo.failErr = errors.New("bağlantı koptu")

	_, err := service.GetPublicCard(ctx, "LOCAL001")
	assert.ErrorIs(t, err, ErrCardNotConfigured)
}

func TestGetUserCardsSortedNewestFirst(t *testing.T) {
	service, repo, _ := newCardServiceForTest()
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, cardID := range []string{"OLD00001", "MID00001", "NEW00001"} {
		repo.docs[models.CardDocKey(1, cardID)] = models.Card{
			DocKey:    models.CardDocKey(1, cardID),
			CardID:    cardID,
			OwnerID:   1,
			UpdatedAt: base.Add(time.Duration(i) * time.Hour),
		}
	}
	// Zamanı olmayan kayıt en eski kabul edilir.
	repo.docs[models.CardDocKey(1, "NOTIME01")] = models.Card{
		DocKey:  models.CardDocKey(1, "NOTIME01"),
		CardID:  "NOTIME01",
		OwnerID: 1,
	}

	cards, err := service.GetUserCards(ctx, 1)
	require.NoError(t, err)
	require.Len(t, cards, 4)
	assert.Equal(t, "NEW00001", cards[0].CardID)
	assert.Equal(t, "MID00001", cards[1].CardID)
	assert.Equal(t, "OLD00001", cards[2].CardID)
	assert.Equal(t, "NOTIME01", cards[3].CardID)
}

func TestDeleteCardIsIdempotent(t *testing.T) {
	service, _, legacy := newCardServiceForTest()
	ctx := context.Background()

	_, err := service.SaveCard(ctx, 1, "AAAA1111", configuredCard("Silinecek"))
	require.NoError(t, err)
	require.NoError(t, legacy.Set("card_AAAA1111", []byte(`{}`)))

	require.NoError(t, service.DeleteCard(ctx, 1, "AAAA1111"))
	// İkinci silme de başarılıdır.
	require.NoError(t, service.DeleteCard(ctx, 1, "AAAA1111"))

	_, err = service.GetCard(ctx, 1, "AAAA1111")
	assert.ErrorIs(t, err, ErrCardNotFound)

	// Eski depo kopyası da temizlenmiştir.
	_, err = legacy.Get("card_AAAA1111")
	assert.ErrorIs(t, err, legacystore.ErrKeyNotFound)
}

func TestCardExists(t *testing.T) {
	service, repo, _ := newCardServiceForTest()
	ctx := context.Background()

	assert.False(t, service.CardExists(ctx, "AAAA1111"))

	_, err := service.SaveCard(ctx, 1, "AAAA1111", configuredCard("Var"))
	require.NoError(t, err)
	assert.True(t, service.CardExists(ctx, "AAAA1111"))

	// Sorgu hatasında yumuşak kontrol false döner.
	repo.failErr = errors.New("bağlantı koptu")
	assert.False(t, service.CardExists(ctx, "AAAA1111"))
}

func TestGenerateCardIDFormat(t *testing.T) {
	service, _, _ := newCardServiceForTest()
	ctx := context.Background()

	keyPattern := regexp.MustCompile(`^[0-9A-Z]{8}$`)
	for i := 0; i < 20; i++ {
		key, err := service.GenerateCardID(ctx)
		require.NoError(t, err)
		assert.Regexp(t, keyPattern, key)
	}
}

func TestGenerateCardIDGivesUpAfterRepeatedCollisions(t *testing.T) {
	service, repo, _ := newCardServiceForTest()
	ctx := context.Background()

	repo.existsAll = true
	_, err := service.GenerateCardID(ctx)
	assert.ErrorIs(t, err, ErrCardKeyGeneration)
}

func TestQuotaChecksDegradeClosedOnStoreFailure(t *testing.T) {
	service, repo, _ := newCardServiceForTest()
	ctx := context.Background()

	repo.failErr = errors.New("bağlantı koptu")
	assert.False(t, service.CanCreateCard(ctx, 1))
	assert.Equal(t, 0, service.GetUserCardCount(ctx, 1))
}

func TestMigrateLegacyData(t *testing.T) {
	service, _, legacy := newCardServiceForTest()
	ctx := context.Background()

	origin := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)
	good := configuredCard("Taşınacak")
	good.CardID = "GOODCARD"
	good.CreatedAt = origin
	goodBlob, _ := json.Marshal(good)
	require.NoError(t, legacy.Set("card_GOODCARD", goodBlob))

	draft := configuredCard("Taslak")
	draft.IsConfigured = false
	draftBlob, _ := json.Marshal(draft)
	require.NoError(t, legacy.Set("card_DRAFT001", draftBlob))

	require.NoError(t, legacy.Set("card_BADBLOB1", []byte("{bozuk json")))
	require.NoError(t, legacy.Set("theme_preference", []byte(`"dark"`)))

	migrated, err := service.MigrateLegacyData(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, migrated)

	// Taşınan kart buluttadır ve orijinal CreatedAt değeri korunmuştur.
	card, err := service.GetCard(ctx, 1, "GOODCARD")
	require.NoError(t, err)
	assert.Equal(t, "Taşınacak", card.Name)
	assert.Equal(t, origin, card.CreatedAt)

	// Taşınan eski kayıt silinmiş, taşınamayanlar yerinde bırakılmıştır.
	_, err = legacy.Get("card_GOODCARD")
	assert.ErrorIs(t, err, legacystore.ErrKeyNotFound)
	_, err = legacy.Get("card_DRAFT001")
	assert.NoError(t, err)
	_, err = legacy.Get("card_BADBLOB1")
	assert.NoError(t, err)
	_, err = legacy.Get("theme_preference")
	assert.NoError(t, err)

	// İkinci süpürme aynı sonucu verir (idempotentlik).
	migrated, err = service.MigrateLegacyData(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, migrated)
}

func TestMigrateLegacyDataLeavesEntryOnSaveFailure(t *testing.T) {
	service, repo, legacy := newCardServiceForTest()
	ctx := context.Background()

	blob, _ := json.Marshal(configuredCard("Taşınamayan"))
	require.NoError(t, legacy.Set("card_GOODCARD", blob))

	repo.failErr = errors.New("bağlantı koptu")
	migrated, err := service.MigrateLegacyData(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, migrated)

	// Kayıt işlemi başarısız olduğu için yerel kopya durur.
	_, err = legacy.Get("card_GOODCARD")
	assert.NoError(t, err)
}

func TestMigrateLegacyDataRespectsQuota(t *testing.T) {
	service, _, legacy := newCardServiceForTest()
	ctx := context.Background()

	for _, cardID := range []string{"CARD0001", "CARD0002", "CARD0003"} {
		_, err := service.SaveCard(ctx, 1, cardID, configuredCard("Kart "+cardID))
		require.NoError(t, err)
	}

	blob, _ := json.Marshal(configuredCard("Fazla"))
	require.NoError(t, legacy.Set("card_EXTRA001", blob))

	migrated, err := service.MigrateLegacyData(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, migrated)

	// Kota dolu olduğu için kayıt buluta geçmemiş, yerinde bırakılmıştır.
	_, err = legacy.Get("card_EXTRA001")
	assert.NoError(t, err)
	assert.Equal(t, 3, service.GetUserCardCount(ctx, 1))
}
