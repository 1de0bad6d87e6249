package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/kilbertusrobin/joynt-backend/internal/normalization"
	"github.com/kilbertusrobin/joynt-backend/internal/platform/apierr"
	"github.com/kilbertusrobin/joynt-backend/internal/platform/logger"
	"github.com/kilbertusrobin/joynt-backend/internal/repos"
	"github.com/kilbertusrobin/joynt-backend/internal/types"
)

// providerTokenTTL is how long refreshed provider tokens are considered
// valid. Google access tokens typically expire after an hour.
const providerTokenTTL = time.Hour

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Handle    string
}

// ProviderTokens carries the optional OAuth tokens a provider hands back.
// The mobile id_token exchange usually has neither.
type ProviderTokens struct {
	AccessToken  *string
	RefreshToken *string
}

// AuthResult is the output of every authentication flow. IsNewUser is true
// only when the flow created a brand-new account; linking an extra provider
// to an existing account is not a new-user event.
type AuthResult struct {
	Account   *types.Account `json:"account"`
	Token     string         `json:"token"`
	IsNewUser bool           `json:"is_new_user"`
}

type AuthService interface {
	RegisterLocal(ctx context.Context, input RegisterInput) (*AuthResult, error)
	LoginLocal(ctx context.Context, email, password string) (*AuthResult, error)
	AuthenticateWithGoogleToken(ctx context.Context, idToken string) (*AuthResult, error)
	AuthenticateWithAppleToken(ctx context.Context, identityToken string) (*AuthResult, error)
	FindOrCreateFromSSO(ctx context.Context, identity *ExternalIdentity, tokens ProviderTokens) (*AuthResult, error)
	ListProviders(ctx context.Context, accountID uuid.UUID) ([]types.AuthProvider, error)
	UnlinkProvider(ctx context.Context, accountID uuid.UUID, provider types.AuthProvider) error
}

type authService struct {
	db           *gorm.DB
	log          *logger.Logger
	accountRepo  repos.AccountRepo
	profileRepo  repos.ProfileRepo
	providerRepo repos.SSOProviderRepo
	handles      HandleAllocator
	verifier     OIDCVerifier
	tokens       TokenIssuer
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	accountRepo repos.AccountRepo,
	profileRepo repos.ProfileRepo,
	providerRepo repos.SSOProviderRepo,
	handles HandleAllocator,
	verifier OIDCVerifier,
	tokens TokenIssuer,
) AuthService {
	serviceLog := log.With("service", "AuthService")
	return &authService{
		db:           db,
		log:          serviceLog,
		accountRepo:  accountRepo,
		profileRepo:  profileRepo,
		providerRepo: providerRepo,
		handles:      handles,
		verifier:     verifier,
		tokens:       tokens,
	}
}

func (as *authService) RegisterLocal(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	email := normalization.ParseInputString(input.Email)
	handle := normalization.ParseInputString(input.Handle)
	if email == "" {
		return nil, apierr.InvalidRequest(errors.New("an email is required to register"))
	}
	if input.Password == "" {
		return nil, apierr.InvalidRequest(errors.New("a password is required to register"))
	}
	if handle == "" {
		return nil, apierr.InvalidRequest(errors.New("a handle is required to register"))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	passwordHash := string(hashed)

	var account *types.Account
	txErr := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		emailExists, err := as.accountRepo.EmailExists(ctx, tx, email)
		if err != nil {
			return fmt.Errorf("failed to check email: %w", err)
		}
		if emailExists {
			return apierr.DuplicateEmail()
		}
		handleExists, err := as.profileRepo.HandleExists(ctx, tx, handle)
		if err != nil {
			return fmt.Errorf("failed to check handle: %w", err)
		}
		if handleExists {
			return apierr.DuplicateHandle()
		}

		account = &types.Account{
			ID:           uuid.New(),
			Email:        email,
			PasswordHash: &passwordHash,
			Role:         types.RoleUser,
			IsActive:     true,
		}
		if _, err := as.accountRepo.Create(ctx, tx, []*types.Account{account}); err != nil {
			return fmt.Errorf("failed to create account: %w", err)
		}

		profile := &types.Profile{
			ID:        uuid.New(),
			AccountID: account.ID,
			FirstName: input.FirstName,
			LastName:  input.LastName,
			Handle:    handle,
		}
		if _, err := as.profileRepo.Create(ctx, tx, []*types.Profile{profile}); err != nil {
			return fmt.Errorf("failed to create profile: %w", err)
		}
		account.Profile = profile
		return nil
	})
	if txErr != nil {
		return nil, as.translateUnique(txErr, "")
	}

	token, err := as.tokens.Issue(account.ID, account.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}
	as.log.Info("Registered new account", "account_id", account.ID.String())
	return &AuthResult{Account: account, Token: token, IsNewUser: true}, nil
}

func (as *authService) LoginLocal(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalization.ParseInputString(email)
	if email == "" || password == "" {
		return nil, apierr.InvalidCredentials()
	}

	accounts, err := as.accountRepo.GetByEmails(ctx, nil, []string{email})
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	// Unknown email, SSO-only account and wrong password all fail the same
	// way so callers cannot tell which emails are registered.
	if len(accounts) == 0 {
		return nil, apierr.InvalidCredentials()
	}
	account := accounts[0]
	if !account.HasPassword() {
		return nil, apierr.InvalidCredentials()
	}
	if bcrypt.CompareHashAndPassword([]byte(*account.PasswordHash), []byte(password)) != nil {
		return nil, apierr.InvalidCredentials()
	}

	full, err := as.accountRepo.GetWithProfile(ctx, nil, account.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	if full == nil {
		return nil, apierr.AccountNotFound()
	}

	token, err := as.tokens.Issue(full.ID, full.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}
	return &AuthResult{Account: full, Token: token, IsNewUser: false}, nil
}

func (as *authService) AuthenticateWithGoogleToken(ctx context.Context, idToken string) (*AuthResult, error) {
	identity, err := as.verifier.VerifyGoogleIDToken(ctx, idToken)
	if err != nil {
		as.log.Warn("Google id_token verification failed", "error", err)
		return nil, apierr.InvalidExternalToken("google")
	}
	return as.FindOrCreateFromSSO(ctx, identity, ProviderTokens{})
}

func (as *authService) AuthenticateWithAppleToken(ctx context.Context, identityToken string) (*AuthResult, error) {
	identity, err := as.verifier.VerifyAppleIDToken(ctx, identityToken)
	if err != nil {
		as.log.Warn("Apple identity token verification failed", "error", err)
		return nil, apierr.InvalidExternalToken("apple")
	}
	return as.FindOrCreateFromSSO(ctx, identity, ProviderTokens{})
}

// FindOrCreateFromSSO reconciles one external identity assertion into an
// account, in this order: purge an orphaned link and fall through, refresh
// a known link, attach a new link to the account owning the claimed email,
// or create account+profile+link as one unit. Every branch that writes runs
// inside a single transaction; the unique indexes on email, handle and
// (provider, provider_id) backstop concurrent reconciliations and their
// violations are translated to domain conflicts.
func (as *authService) FindOrCreateFromSSO(ctx context.Context, identity *ExternalIdentity, tokens ProviderTokens) (*AuthResult, error) {
	if identity == nil || identity.SubjectID == "" || identity.Email == "" {
		return nil, apierr.InvalidExternalToken("sso")
	}
	email := normalization.ParseInputString(identity.Email)

	var result *AuthResult
	txErr := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		linked, err := as.providerRepo.GetBySubject(ctx, tx, identity.Provider, identity.SubjectID)
		if err != nil {
			return fmt.Errorf("failed to look up provider link: %w", err)
		}

		if linked != nil && linked.Orphaned() {
			// Left behind by a partial failure; if ignored it would block
			// this external identity from ever signing in again.
			as.log.Warn("Purging orphaned provider link",
				"provider", string(identity.Provider),
				"subject_id", identity.SubjectID)
			if err := as.providerRepo.Delete(ctx, tx, []*types.SSOProvider{linked}); err != nil {
				return fmt.Errorf("failed to delete orphaned provider link: %w", err)
			}
			linked = nil
		}

		if linked != nil {
			expiry := time.Now().Add(providerTokenTTL)
			if err := as.providerRepo.UpdateTokens(ctx, tx, linked.ID, tokens.AccessToken, tokens.RefreshToken, &expiry); err != nil {
				return fmt.Errorf("failed to refresh provider tokens: %w", err)
			}
			account, err := as.accountRepo.GetWithProfile(ctx, tx, *linked.AccountID)
			if err != nil {
				return fmt.Errorf("failed to load account: %w", err)
			}
			if account == nil {
				return apierr.AccountNotFound()
			}
			result = &AuthResult{Account: account, IsNewUser: false}
			return nil
		}

		accounts, err := as.accountRepo.GetByEmails(ctx, tx, []string{email})
		if err != nil {
			return fmt.Errorf("failed to look up account by email: %w", err)
		}

		if len(accounts) > 0 {
			// Attaching a provider to an account someone else owns must not
			// be possible on the strength of an unverified email claim.
			if !identity.EmailVerified {
				return apierr.InvalidExternalToken(string(identity.Provider))
			}
			account := accounts[0]
			sameKind, err := as.providerRepo.GetByAccountAndProvider(ctx, tx, account.ID, identity.Provider)
			if err != nil {
				return fmt.Errorf("failed to check existing provider link: %w", err)
			}
			// One linked identity per provider kind; a second one of the
			// same kind must never silently merge into the first.
			if sameKind != nil {
				return apierr.ProviderAlreadyLinked(string(identity.Provider))
			}

			row := buildProviderRow(identity, tokens, account.ID)
			if _, err := as.providerRepo.Create(ctx, tx, []*types.SSOProvider{row}); err != nil {
				return fmt.Errorf("failed to link provider: %w", err)
			}

			full, err := as.accountRepo.GetWithProfile(ctx, tx, account.ID)
			if err != nil {
				return fmt.Errorf("failed to load account: %w", err)
			}
			result = &AuthResult{Account: full, IsNewUser: false}
			return nil
		}

		handle, err := as.handles.Allocate(ctx, tx, identity.FirstName, identity.LastName, email)
		if err != nil {
			return err
		}

		firstName := identity.FirstName
		if firstName == "" {
			// Apple only supplies the name on the very first authorization.
			firstName = "User"
		}

		account := &types.Account{
			ID:       uuid.New(),
			Email:    email,
			Role:     types.RoleUser,
			IsActive: true,
		}
		if _, err := as.accountRepo.Create(ctx, tx, []*types.Account{account}); err != nil {
			return fmt.Errorf("failed to create account: %w", err)
		}

		profile := &types.Profile{
			ID:        uuid.New(),
			AccountID: account.ID,
			FirstName: firstName,
			LastName:  identity.LastName,
			Handle:    handle,
		}
		if _, err := as.profileRepo.Create(ctx, tx, []*types.Profile{profile}); err != nil {
			return fmt.Errorf("failed to create profile: %w", err)
		}

		row := buildProviderRow(identity, tokens, account.ID)
		if _, err := as.providerRepo.Create(ctx, tx, []*types.SSOProvider{row}); err != nil {
			return fmt.Errorf("failed to create provider link: %w", err)
		}

		account.Profile = profile
		result = &AuthResult{Account: account, IsNewUser: true}
		return nil
	})
	if txErr != nil {
		return nil, as.translateUnique(txErr, identity.Provider)
	}

	token, err := as.tokens.Issue(result.Account.ID, result.Account.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}
	result.Token = token
	return result, nil
}

func (as *authService) ListProviders(ctx context.Context, accountID uuid.UUID) ([]types.AuthProvider, error) {
	rows, err := as.providerRepo.GetByAccountIDs(ctx, nil, []uuid.UUID{accountID})
	if err != nil {
		return nil, fmt.Errorf("failed to list providers: %w", err)
	}
	providers := make([]types.AuthProvider, 0, len(rows))
	for _, row := range rows {
		providers = append(providers, row.Provider)
	}
	return providers, nil
}

func (as *authService) UnlinkProvider(ctx context.Context, accountID uuid.UUID, provider types.AuthProvider) error {
	return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		account, err := as.accountRepo.GetWithProviders(ctx, tx, accountID)
		if err != nil {
			return fmt.Errorf("failed to load account: %w", err)
		}
		if account == nil {
			return apierr.AccountNotFound()
		}
		// The account must keep at least one way to sign in.
		if len(account.Providers) <= 1 && !account.HasPassword() {
			return apierr.LastAuthMethod()
		}
		if err := as.providerRepo.DeleteByAccountAndProvider(ctx, tx, accountID, provider); err != nil {
			return fmt.Errorf("failed to unlink provider: %w", err)
		}
		return nil
	})
}

func (as *authService) translateUnique(err error, provider types.AuthProvider) error {
	if err == nil || !repos.IsUniqueViolation(err) {
		return err
	}
	switch repos.UniqueViolationTarget(err) {
	case "email":
		return apierr.DuplicateEmail()
	case "handle":
		return apierr.DuplicateHandle()
	case "provider":
		if provider != "" {
			return apierr.ProviderAlreadyLinked(string(provider))
		}
	}
	return err
}

func buildProviderRow(identity *ExternalIdentity, tokens ProviderTokens, accountID uuid.UUID) *types.SSOProvider {
	expiry := time.Now().Add(providerTokenTTL)
	ownerID := accountID
	row := &types.SSOProvider{
		ID:           uuid.New(),
		Provider:     identity.Provider,
		ProviderID:   identity.SubjectID,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		TokenExpiry:  &expiry,
		AccountID:    &ownerID,
	}
	if identity.PhotoURL != "" {
		if meta, err := json.Marshal(map[string]string{"profile_photo": identity.PhotoURL}); err == nil {
			row.Metadata = datatypes.JSON(meta)
		}
	}
	return row
}
