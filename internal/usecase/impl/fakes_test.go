package impl

import (
	"context"
	"io"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"energyfit/config"
	"energyfit/internal/domain/entity"
	domainerrors "energyfit/internal/domain/errors"
	"energyfit/internal/domain/repository"
	"energyfit/internal/domain/service"
	"energyfit/internal/errors"
	"energyfit/internal/infra/auth"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig() *config.Config {
	return &config.Config{
		Auth: &config.AuthConfig{
			BcryptCost:          bcrypt.MinCost,
			RecoveryTokenTTL:    time.Hour,
			NotificationTimeout: time.Second,
		},
		Session: &config.SessionConfig{IdleTimeout: 30 * time.Minute},
	}
}

// memoryStore is an in-process stand-in for the relational store.
// Email uniqueness is enforced per kind like the real unique indexes.
type memoryStore struct {
	mu       sync.Mutex
	nextID   map[entity.PrincipalKind]int64
	rows     map[entity.PrincipalKind]map[int64]entity.Principal
	tokens   map[string]entity.RecoveryToken
	sessions map[string]entity.Session
	products map[int64]entity.Product
	nextProd int64

	// ordered marks products that order items still reference.
	ordered map[int64]bool

	// findErr, when set, is returned by every principal lookup.
	findErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		nextID: map[entity.PrincipalKind]int64{},
		rows: map[entity.PrincipalKind]map[int64]entity.Principal{
			entity.PrincipalKindAdmin:  {},
			entity.PrincipalKindSeller: {},
		},
		tokens:   map[string]entity.RecoveryToken{},
		sessions: map[string]entity.Session{},
		products: map[int64]entity.Product{},
	}
}

type memorySnapshot struct {
	nextID   map[entity.PrincipalKind]int64
	rows     map[entity.PrincipalKind]map[int64]entity.Principal
	tokens   map[string]entity.RecoveryToken
	products map[int64]entity.Product
	nextProd int64
}

func (s *memoryStore) snapshot() memorySnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make(map[entity.PrincipalKind]map[int64]entity.Principal, len(s.rows))
	for kind, table := range s.rows {
		rows[kind] = maps.Clone(table)
	}

	return memorySnapshot{
		nextID:   maps.Clone(s.nextID),
		rows:     rows,
		tokens:   maps.Clone(s.tokens),
		products: maps.Clone(s.products),
		nextProd: s.nextProd,
	}
}

func (s *memoryStore) restore(snap memorySnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID = snap.nextID
	s.rows = snap.rows
	s.tokens = snap.tokens
	s.products = snap.products
	s.nextProd = snap.nextProd
}

func (s *memoryStore) table(kind entity.PrincipalKind) (map[int64]entity.Principal, error) {
	table, ok := s.rows[kind]
	if !ok {
		return nil, errors.WithStack(domainerrors.ErrInvalidPrincipalKind)
	}

	return table, nil
}

// seed inserts a principal with an already hashed password.
func (s *memoryStore) seed(kind entity.PrincipalKind, name, email, passwordHash string) *entity.Principal {
	p := &entity.Principal{Kind: kind, Name: name, Email: email, PasswordHash: passwordHash}
	if err := (&memoryPrincipalRepo{store: s}).Create(context.Background(), p); err != nil {
		panic(err)
	}

	return p
}

func (s *memoryStore) principal(kind entity.PrincipalKind, id int64) (entity.Principal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.rows[kind][id]

	return p, ok
}

func (s *memoryStore) tokenCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.tokens)
}

// --- Principal repository ---

type memoryPrincipalRepo struct {
	store *memoryStore
}

func (r *memoryPrincipalRepo) FindByEmail(_ context.Context, kind entity.PrincipalKind, email string) (*entity.Principal, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.store.findErr != nil {
		return nil, r.store.findErr
	}
	table, err := r.store.table(kind)
	if err != nil {
		return nil, err
	}
	for _, p := range table {
		if p.Email == email {
			found := p

			return &found, nil
		}
	}

	return nil, errors.WithStack(domainerrors.ErrPrincipalNotFound)
}

func (r *memoryPrincipalRepo) FindByID(_ context.Context, kind entity.PrincipalKind, id int64) (*entity.Principal, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	table, err := r.store.table(kind)
	if err != nil {
		return nil, err
	}
	p, ok := table[id]
	if !ok {
		return nil, errors.WithStack(domainerrors.ErrPrincipalNotFound)
	}

	return &p, nil
}

func (r *memoryPrincipalRepo) Create(_ context.Context, principal *entity.Principal) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	table, err := r.store.table(principal.Kind)
	if err != nil {
		return err
	}
	for _, p := range table {
		if p.Email == principal.Email {
			return domainerrors.ErrDuplicateEmail.WrapMessage("unique index")
		}
	}

	r.store.nextID[principal.Kind]++
	principal.ID = r.store.nextID[principal.Kind]
	principal.CreatedAt = time.Now()
	table[principal.ID] = *principal

	return nil
}

func (r *memoryPrincipalRepo) UpdatePasswordHash(_ context.Context, kind entity.PrincipalKind, id int64, passwordHash string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	table, err := r.store.table(kind)
	if err != nil {
		return err
	}
	p, ok := table[id]
	if !ok {
		return errors.WithStack(domainerrors.ErrPrincipalNotFound)
	}
	p.PasswordHash = passwordHash
	table[id] = p

	return nil
}

// --- Recovery token repository ---

type memoryTokenRepo struct {
	store *memoryStore
}

func (r *memoryTokenRepo) Create(_ context.Context, token *entity.RecoveryToken) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	token.CreatedAt = time.Now()
	r.store.tokens[token.TokenHash] = *token

	return nil
}

func (r *memoryTokenRepo) FindByTokenHash(_ context.Context, tokenHash string) (*entity.RecoveryToken, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	token, ok := r.store.tokens[tokenHash]
	if !ok {
		return nil, errors.WithStack(domainerrors.ErrRecoveryTokenNotFound)
	}

	return &token, nil
}

func (r *memoryTokenRepo) DeleteByTokenHash(_ context.Context, tokenHash string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.tokens[tokenHash]; !ok {
		return errors.WithStack(domainerrors.ErrRecoveryTokenNotFound)
	}
	delete(r.store.tokens, tokenHash)

	return nil
}

// --- Session repository ---

type memorySessionRepo struct {
	store *memoryStore
}

func (r *memorySessionRepo) Create(_ context.Context, session *entity.Session) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.sessions[session.IDHash] = *session

	return nil
}

func (r *memorySessionRepo) FindByIDHash(_ context.Context, idHash string) (*entity.Session, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	session, ok := r.store.sessions[idHash]
	if !ok {
		return nil, errors.WithStack(domainerrors.ErrSessionNotFound)
	}

	return &session, nil
}

func (r *memorySessionRepo) Touch(_ context.Context, idHash string, expiresAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	session, ok := r.store.sessions[idHash]
	if !ok {
		return errors.WithStack(domainerrors.ErrSessionNotFound)
	}
	session.ExpiresAt = expiresAt
	r.store.sessions[idHash] = session

	return nil
}

func (r *memorySessionRepo) Delete(_ context.Context, idHash string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	delete(r.store.sessions, idHash)

	return nil
}

func (r *memorySessionRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var removed int64
	for hash, session := range r.store.sessions {
		if session.ExpiresAt.Before(now) {
			delete(r.store.sessions, hash)
			removed++
		}
	}

	return removed, nil
}

// --- Product repository ---

type memoryProductRepo struct {
	store *memoryStore
}

func (r *memoryProductRepo) List(_ context.Context) ([]*entity.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	products := make([]*entity.Product, 0, len(r.store.products))
	for id := r.store.nextProd; id > 0; id-- {
		if p, ok := r.store.products[id]; ok {
			products = append(products, &p)
		}
	}

	return products, nil
}

func (r *memoryProductRepo) ListBySeller(ctx context.Context, sellerID int64) ([]*entity.Product, error) {
	all, _ := r.List(ctx)
	mine := make([]*entity.Product, 0, len(all))
	for _, p := range all {
		if p.SellerID == sellerID {
			mine = append(mine, p)
		}
	}

	return mine, nil
}

func (r *memoryProductRepo) FindByID(_ context.Context, id int64) (*entity.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	p, ok := r.store.products[id]
	if !ok {
		return nil, errors.WithStack(domainerrors.ErrProductNotFound)
	}

	return &p, nil
}

func (r *memoryProductRepo) Create(_ context.Context, product *entity.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.nextProd++
	product.ID = r.store.nextProd
	r.store.products[product.ID] = *product

	return nil
}

func (r *memoryProductRepo) Update(_ context.Context, product *entity.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.products[product.ID]; !ok {
		return errors.WithStack(domainerrors.ErrProductNotFound)
	}
	r.store.products[product.ID] = *product

	return nil
}

func (r *memoryProductRepo) Delete(_ context.Context, id int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.products[id]; !ok {
		return errors.WithStack(domainerrors.ErrProductNotFound)
	}
	if r.store.ordered[id] {
		return errors.WithStack(domainerrors.ErrProductInUse)
	}
	delete(r.store.products, id)

	return nil
}

// --- Order repository ---

// memoryOrderRepo serves a fixed set of orders; err fails every read.
type memoryOrderRepo struct {
	orders []entity.Order
	err    error
}

func (r *memoryOrderRepo) ListBySeller(_ context.Context, sellerID int64) ([]*entity.Order, error) {
	if r.err != nil {
		return nil, r.err
	}

	var mine []*entity.Order
	for i := range r.orders {
		if r.orders[i].SellerID == sellerID {
			order := r.orders[i]
			mine = append(mine, &order)
		}
	}
	slices.SortFunc(mine, func(a, b *entity.Order) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return mine, nil
}

func (r *memoryOrderRepo) SumCompletedTotal(ctx context.Context, sellerID int64) (float64, error) {
	orders, err := r.ListBySeller(ctx, sellerID)
	if err != nil {
		return 0, err
	}

	var total float64
	for _, o := range orders {
		if o.IsCompleted() {
			total += o.Total
		}
	}

	return total, nil
}

// --- Transactions ---

type memoryRepoFactory struct {
	store *memoryStore
}

func (f *memoryRepoFactory) NewPrincipalRepository() repository.PrincipalRepository {
	return &memoryPrincipalRepo{store: f.store}
}

func (f *memoryRepoFactory) NewRecoveryTokenRepository() repository.RecoveryTokenRepository {
	return &memoryTokenRepo{store: f.store}
}

func (f *memoryRepoFactory) NewProductRepository() repository.ProductRepository {
	return &memoryProductRepo{store: f.store}
}

// memoryTxManager runs transactions one at a time and restores a snapshot on error,
// which gives serializable isolation over memoryStore.
type memoryTxManager struct {
	txMu  sync.Mutex
	store *memoryStore
}

func (tm *memoryTxManager) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	tm.txMu.Lock()
	defer tm.txMu.Unlock()

	snap := tm.store.snapshot()
	if err := fn(&memoryRepoFactory{store: tm.store}); err != nil {
		tm.store.restore(snap)

		return err
	}

	return nil
}

// --- Notifier ---

type sentRecovery struct {
	email, name, token string
}

// recordingNotifier captures dispatched instructions; err makes every send fail.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentRecovery
	err  error
}

func (n *recordingNotifier) SendRecoveryInstructions(_ context.Context, email, name, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.sent = append(n.sent, sentRecovery{email: email, name: name, token: token})

	return n.err
}

func (n *recordingNotifier) messages() []sentRecovery {
	n.mu.Lock()
	defer n.mu.Unlock()

	return append([]sentRecovery(nil), n.sent...)
}

// authFixtures wires authService over memoryStore with real bcrypt and token generation.
type authFixtures struct {
	store    *memoryStore
	hasher   service.PasswordHasher
	tokens   service.TokenGenerator
	notifier *recordingNotifier
	srv      *authService
}

func newAuthFixtures(cfg *config.Config) *authFixtures {
	store := newMemoryStore()
	hasher := auth.NewBcryptHasherWithCost(bcrypt.MinCost)
	tokens := auth.NewTokenGenerator()
	notifier := &recordingNotifier{}

	srv := newAuthService(AuthServiceParams{
		TxManager:     &memoryTxManager{store: store},
		PrincipalRepo: &memoryPrincipalRepo{store: store},
		TokenRepo:     &memoryTokenRepo{store: store},
		Hasher:        hasher,
		Tokens:        tokens,
		Notifier:      notifier,
		Config:        cfg,
		Logger:        newDiscardLogger(),
	})

	return &authFixtures{store: store, hasher: hasher, tokens: tokens, notifier: notifier, srv: srv}
}

func (f *authFixtures) mustHash(password string) string {
	hash, err := f.hasher.Hash(password)
	if err != nil {
		panic(err)
	}

	return hash
}
