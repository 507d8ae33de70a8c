package mockbackend

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"aquaflow-client/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var (
	errInvalidCredentials = errors.New("invalid credentials")
	errInvalidToken       = errors.New("invalid token")
	errIllegalAction      = errors.New("action not allowed for current status")
)

type account struct {
	user         domain.User
	passwordHash []byte
}

// Store holds the fixture's entire state in memory.
type Store struct {
	mu         sync.Mutex
	accounts   map[int64]*account
	tokens     map[string]int64
	carts      map[int64][]domain.CartLine
	addresses  map[int64][]domain.Address
	orders     []domain.Order
	gallons    []domain.Product
	resetCodes map[string]string
	nextLineID int64
	nextUserID int64
}

// NewStore builds a seeded store: one admin, one customer, a small catalog,
// and a handful of orders spread across the status machine.
func NewStore() *Store {
	s := &Store{
		accounts:   map[int64]*account{},
		tokens:     map[string]int64{},
		carts:      map[int64][]domain.CartLine{},
		addresses:  map[int64][]domain.Address{},
		resetCodes: map[string]string{},
		nextLineID: 1,
		nextUserID: 1,
	}
	s.seed()
	return s
}

func (s *Store) seed() {
	s.addAccount(domain.User{
		Role:      domain.RoleAdmin,
		FirstName: "Ada",
		LastName:  "Santos",
		Email:     "admin@aquaflow.test",
		Username:  "admin",
	}, "admin123")
	s.addAccount(domain.User{
		Role:      domain.RoleCustomer,
		FirstName: "Carlo",
		LastName:  "Reyes",
		Email:     "carlo@aquaflow.test",
		Username:  "carlo",
	}, "customer123")

	s.gallons = []domain.Product{
		{ID: 1, Name: "Round Gallon", Liters: 19, PriceCents: 3000, ImageURL: "/imgaes/round.png"},
		{ID: 2, Name: "Slim Gallon", Liters: 19, PriceCents: 3500, ImageURL: "/imgaes/slim.png"},
		{ID: 3, Name: "Mini Gallon", Liters: 10, PriceCents: 2500, ImageURL: "/imgaes/mini.png"},
	}

	// Saved addresses for the seeded customer.
	s.addresses[2] = []domain.Address{
		{ID: 1, Label: "Home", Address: "12 Mabini St, Barangay Poblacion", IsDefault: true},
		{ID: 2, Label: "Office", Address: "Unit 4B, Rizal Ave corner Bonifacio"},
	}

	now := time.Now().UTC()
	s.orders = []domain.Order{
		{ID: 41, CustomerName: "Carlo Reyes", Products: "Round Gallon x2", TotalCents: 6000, Status: domain.StatusPending, CreatedAt: now.Add(-3 * time.Hour)},
		{ID: 42, CustomerName: "Mia Cruz", Products: "Slim Gallon x1", TotalCents: 3500, Status: domain.StatusPreparing, CreatedAt: now.Add(-2 * time.Hour)},
		{ID: 43, CustomerName: "Leo Tan", Products: "Mini Gallon x3", TotalCents: 7500, Status: domain.StatusPickedUp, CreatedAt: now.Add(-time.Hour)},
		{ID: 44, CustomerName: "Ana Lim", Products: "Round Gallon x1", TotalCents: 3000, Status: domain.StatusCompleted, CreatedAt: now.Add(-26 * time.Hour)},
	}
}

func (s *Store) addAccount(user domain.User, password string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		panic(fmt.Sprintf("seed password hash: %v", err))
	}
	user.ID = s.nextUserID
	s.nextUserID++
	s.accounts[user.ID] = &account{user: user, passwordHash: hash}
}

// Authenticate checks an identifier (email or username) and password, issuing
// a fresh token on success.
func (s *Store) Authenticate(identifier, password string) (domain.User, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	identifier = strings.ToLower(strings.TrimSpace(identifier))
	for _, acc := range s.accounts {
		if strings.ToLower(acc.user.Email) != identifier && strings.ToLower(acc.user.Username) != identifier {
			continue
		}
		if bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(password)) != nil {
			return domain.User{}, "", errInvalidCredentials
		}
		token := randomToken()
		s.tokens[token] = acc.user.ID
		return acc.user, token, nil
	}
	return domain.User{}, "", errInvalidCredentials
}

// Register adds a customer account.
func (s *Store) Register(user domain.User, password string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, acc := range s.accounts {
		if strings.EqualFold(acc.user.Email, user.Email) || strings.EqualFold(acc.user.Username, user.Username) {
			return domain.User{}, errors.New("account already exists")
		}
	}
	user.Role = domain.RoleCustomer
	s.addAccount(user, password)
	return user, nil
}

// UserByToken resolves a bearer token.
func (s *Store) UserByToken(token string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.tokens[token]
	if !ok {
		return domain.User{}, errInvalidToken
	}
	return s.accounts[id].user, nil
}

// RevokeToken drops a token; unknown tokens are a no-op.
func (s *Store) RevokeToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
}

// UpdateProfile overwrites the editable fields of a user.
func (s *Store) UpdateProfile(userID int64, first, last, email, contact string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[userID]
	if !ok {
		return domain.User{}, errInvalidToken
	}
	acc.user.FirstName = first
	acc.user.LastName = last
	acc.user.Email = email
	acc.user.ContactNo = contact
	return acc.user, nil
}

// CheckPassword verifies a user's current password. Unlike Authenticate it
// issues no token.
func (s *Store) CheckPassword(userID int64, password string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[userID]
	if !ok {
		return false
	}
	return bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(password)) == nil
}

// SetPassword replaces a user's password hash.
func (s *Store) SetPassword(userID int64, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[userID]
	if !ok {
		return domain.ErrNotFound
	}
	acc.passwordHash = hash
	return nil
}

// Addresses returns a copy of a user's saved delivery addresses.
func (s *Store) Addresses(userID int64) []domain.Address {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Address, len(s.addresses[userID]))
	copy(out, s.addresses[userID])
	return out
}

// Cart returns a copy of a user's cart lines.
func (s *Store) Cart(userID int64) []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartLocked(userID)
}

func (s *Store) cartLocked(userID int64) []domain.CartLine {
	lines := s.carts[userID]
	out := make([]domain.CartLine, len(lines))
	copy(out, lines)
	return out
}

// AddToCart creates a line or bumps the existing line for the same product:
// one product, one line.
func (s *Store) AddToCart(userID, gallonID int64, quantity int) ([]domain.CartLine, error) {
	if quantity <= 0 {
		return nil, errors.New("quantity must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var product *domain.Product
	for i := range s.gallons {
		if s.gallons[i].ID == gallonID {
			product = &s.gallons[i]
			break
		}
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	lines := s.carts[userID]
	for i := range lines {
		if lines[i].ProductID == gallonID {
			lines[i].Quantity += quantity
			lines[i].TotalCents = lines[i].LineTotalCents()
			return s.cartLocked(userID), nil
		}
	}

	s.carts[userID] = append(lines, domain.CartLine{
		LineID:     s.nextLineID,
		ProductID:  product.ID,
		Name:       product.Name,
		Liters:     product.Liters,
		PriceCents: product.PriceCents,
		Quantity:   quantity,
		TotalCents: product.PriceCents * int64(quantity),
		ImageURL:   product.ImageURL,
	})
	s.nextLineID++
	return s.cartLocked(userID), nil
}

// RemoveLines deletes the given lines from a user's cart; unknown ids are
// ignored.
func (s *Store) RemoveLines(userID int64, lineIDs []int64) []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	drop := make(map[int64]bool, len(lineIDs))
	for _, id := range lineIDs {
		drop[id] = true
	}
	var kept []domain.CartLine
	for _, l := range s.carts[userID] {
		if !drop[l.LineID] {
			kept = append(kept, l)
		}
	}
	s.carts[userID] = kept
	return s.cartLocked(userID)
}

// Increase bumps a line's quantity by one.
func (s *Store) Increase(userID, lineID int64) ([]domain.CartLine, error) {
	return s.changeQuantity(userID, lineID, 1)
}

// Decrease drops a line's quantity by one, removing the line when it reaches
// zero: a zero-quantity line is never stored.
func (s *Store) Decrease(userID, lineID int64) ([]domain.CartLine, error) {
	return s.changeQuantity(userID, lineID, -1)
}

func (s *Store) changeQuantity(userID, lineID int64, delta int) ([]domain.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.carts[userID]
	for i := range lines {
		if lines[i].LineID != lineID {
			continue
		}
		lines[i].Quantity += delta
		if lines[i].Quantity <= 0 {
			s.carts[userID] = append(lines[:i], lines[i+1:]...)
		} else {
			lines[i].TotalCents = lines[i].LineTotalCents()
		}
		return s.cartLocked(userID), nil
	}
	return nil, domain.ErrNotFound
}

// Orders returns a copy of all orders.
func (s *Store) Orders() []domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Order, len(s.orders))
	copy(out, s.orders)
	return out
}

// transitions is the order status machine: current status -> action -> next.
var transitions = map[string]map[string]string{
	domain.StatusPending: {
		domain.ActionApprove: domain.StatusToPickup,
		domain.ActionCancel:  domain.StatusCancelled,
	},
	domain.StatusPickedUp: {
		domain.ActionMarkPreparing: domain.StatusPreparing,
	},
	domain.StatusPreparing: {
		domain.ActionMarkToDeliver: domain.StatusToDeliver,
	},
}

// ApplyOrderAction transitions an order along the status machine and returns
// the confirmation message.
func (s *Store) ApplyOrderAction(orderID int64, action string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.orders {
		if s.orders[i].ID != orderID {
			continue
		}
		next, ok := transitions[domain.NormalizeStatus(s.orders[i].Status)][action]
		if !ok {
			return "", errIllegalAction
		}
		s.orders[i].Status = next
		return fmt.Sprintf("Order #%d is now %s.", orderID, domain.DisplayStatus(next)), nil
	}
	return "", domain.ErrNotFound
}

// Gallons returns the catalog.
func (s *Store) Gallons() []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Product, len(s.gallons))
	copy(out, s.gallons)
	return out
}

// StoreResetCode records a password reset code for an email.
func (s *Store) StoreResetCode(email, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetCodes[strings.ToLower(email)] = code
}

// VerifyResetCode checks a password reset code.
func (s *Store) VerifyResetCode(email, code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return code != "" && s.resetCodes[strings.ToLower(email)] == code
}

// ResetPassword replaces the password of the account with the given email
// after code verification.
func (s *Store) ResetPassword(email, password, code string) error {
	if !s.VerifyResetCode(email, code) {
		return errors.New("invalid reset code")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acc := range s.accounts {
		if strings.EqualFold(acc.user.Email, email) {
			hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			acc.passwordHash = hash
			delete(s.resetCodes, strings.ToLower(email))
			return nil
		}
	}
	return domain.ErrNotFound
}

func randomToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return base64.RawURLEncoding.EncodeToString([]byte(fmt.Sprintf("%d", time.Now().UnixNano())))
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
