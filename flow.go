package session

import (
	"context"
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/google/uuid"
)

// FlowState names a view of the login/activation machine.
type FlowState string

const (
	// StateLogin is the credential form, the machine's resting state.
	StateLogin FlowState = "login"
	// StateActivateRequest asks for the email to send a code to.
	StateActivateRequest FlowState = "activate_request"
	// StateActivateVerify collects the six-digit code.
	StateActivateVerify FlowState = "activate_verify"
	// StateActivatePassword sets the password after the code checked out.
	StateActivatePassword FlowState = "activate_password"
)

// Fallback messages shown when the backend gives no detail.
const (
	msgLoginFailed    = "Login failed. Please check your credentials."
	msgGenericFailure = "Something went wrong. Please try again."
)

// Flow drives the login and account-activation state machine. Transitions
// are validated against an explicit edge set: activation moves forward only,
// request -> verify -> password, with a back-to-login escape from every
// activation state. A failed operation keeps the machine where it is and
// replaces the single visible error message; success clears it.
//
// Flow persists a session token on exactly two paths, login success and
// registration success. Activation never touches the Store: the verify step
// yields a temporary token held in memory here, good only for SetPassword,
// and a finished activation sends the user back to log in manually.
type Flow struct {
	id     uuid.UUID
	api    Backend
	store  *Store
	nav    Navigator
	logger Logger

	state       FlowState
	transitions map[FlowState]map[FlowState]struct{}

	email     string
	otp       *OTPInput
	tempToken string
	errMsg    string
	busy      bool
}

// FlowOption customizes Flow construction.
type FlowOption func(*Flow)

// WithFlowLogger overrides the logger.
func WithFlowLogger(logger Logger) FlowOption {
	return func(f *Flow) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithOTPLength overrides the activation-code length.
func WithOTPLength(length int) FlowOption {
	return func(f *Flow) {
		if length > 0 {
			f.otp = NewOTPInput(length)
		}
	}
}

// NewFlow returns a Flow in the login state.
func NewFlow(api Backend, store *Store, nav Navigator, opts ...FlowOption) *Flow {
	f := &Flow{
		id:     uuid.New(),
		api:    api,
		store:  store,
		nav:    nav,
		logger: defLogger{},
		state:  StateLogin,
		otp:    NewOTPInput(DefaultOTPLength),
		transitions: map[FlowState]map[FlowState]struct{}{
			StateLogin: {
				StateActivateRequest: {},
			},
			StateActivateRequest: {
				StateActivateVerify: {},
				StateLogin:          {},
			},
			StateActivateVerify: {
				StateActivatePassword: {},
				StateLogin:            {},
			},
			StateActivatePassword: {
				StateLogin: {},
			},
		},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}

	return f
}

// State returns the current view.
func (f *Flow) State() FlowState {
	return f.state
}

// ErrorMessage returns the visible error, empty after a success.
func (f *Flow) ErrorMessage() string {
	return f.errMsg
}

// Busy reports whether a submit is outstanding. The UI disables the
// trigger while this is true.
func (f *Flow) Busy() bool {
	return f.busy
}

// OTP exposes the activation-code input model for the verify view.
func (f *Flow) OTP() *OTPInput {
	return f.otp
}

// Email returns the address the activation flow is working on.
func (f *Flow) Email() string {
	return f.email
}

// BeginActivation leaves the login form for the activation sub-machine.
func (f *Flow) BeginActivation() error {
	return f.transition(StateActivateRequest)
}

// BackToLogin abandons activation from any of its states. The in-progress
// ActivationSession is discarded.
func (f *Flow) BackToLogin() error {
	if f.state == StateLogin {
		return nil
	}
	return f.transition(StateLogin)
}

// Login exchanges credentials for a session token. Success persists the
// token and navigates to the application root, which redirects by role.
// Failure leaves the login view untouched apart from the error message, and
// writes nothing.
func (f *Flow) Login(ctx context.Context, identifier, secret string) error {
	if f.state != StateLogin {
		return f.stateError(StateLogin)
	}

	fields := validation.Errors{
		"email":    validation.Validate(identifier, validation.Required),
		"password": validation.Validate(secret, validation.Required),
	}
	if err := fields.Filter(); err != nil {
		return f.fail(err.Error(), err)
	}

	if err := f.begin(); err != nil {
		return err
	}
	defer f.end()

	token, err := f.api.Token(ctx, identifier, secret)
	if err != nil {
		f.logger.Error("login failed for flow %s: %v", f.id, err)
		return f.fail(msgLoginFailed, err)
	}

	f.clearError()
	f.store.SetSession(token)
	f.nav.Push(RouteHome)

	f.logger.Info("login succeeded for flow %s", f.id)
	return nil
}

// RegisterInput is the signup form. ConfirmPassword is checked locally and
// never sent.
type RegisterInput struct {
	FullName        string
	Email           string
	Phone           string
	Password        string
	ConfirmPassword string
}

// Validate applies the field rules; the password equality precondition is
// handled separately so no request fires on a mismatch.
func (r RegisterInput) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FullName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Phone, validation.Required, validation.Length(8, 15), is.Digit),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
	)
}

// Register creates the account and starts a session with the returned
// token, landing on the customer portal.
func (f *Flow) Register(ctx context.Context, input RegisterInput) error {
	if f.state != StateLogin {
		return f.stateError(StateLogin)
	}

	if input.Password != input.ConfirmPassword {
		return f.fail("Passwords do not match.", ErrPasswordMismatch)
	}

	if err := input.Validate(); err != nil {
		return f.fail(err.Error(), err)
	}

	if err := f.begin(); err != nil {
		return err
	}
	defer f.end()

	token, err := f.api.Register(ctx, RegisterRequest{
		FullName: input.FullName,
		Email:    input.Email,
		Phone:    input.Phone,
		Password: input.Password,
	})
	if err != nil {
		f.logger.Error("registration failed for flow %s: %v", f.id, err)
		return f.fail(msgGenericFailure, err)
	}

	f.clearError()
	f.store.SetSession(token)
	f.nav.Push(RouteCustomer)

	return nil
}

// RequestOTP asks for an activation code and, on success, advances to the
// verify view.
func (f *Flow) RequestOTP(ctx context.Context, email string) error {
	if f.state != StateActivateRequest {
		return f.stateError(StateActivateRequest)
	}

	if err := validation.Validate(email, validation.Required, is.Email); err != nil {
		return f.fail(err.Error(), err)
	}

	if err := f.begin(); err != nil {
		return err
	}
	defer f.end()

	if err := f.api.RequestOTP(ctx, email); err != nil {
		f.logger.Error("otp request failed for flow %s: %v", f.id, err)
		return f.fail(msgGenericFailure, err)
	}

	f.clearError()
	f.email = email

	return f.transition(StateActivateVerify)
}

// VerifyOTP submits the entered code. Success holds the temporary token and
// advances to the password view; failure keeps the entered code so the user
// can correct a single digit.
func (f *Flow) VerifyOTP(ctx context.Context) error {
	if f.state != StateActivateVerify {
		return f.stateError(StateActivateVerify)
	}

	code := f.otp.Value()
	if err := validation.Validate(code,
		validation.Required,
		validation.Length(f.otp.Length(), f.otp.Length()),
		is.Digit,
	); err != nil {
		return f.fail("Please enter the complete code.", err)
	}

	if err := f.begin(); err != nil {
		return err
	}
	defer f.end()

	token, err := f.api.VerifyOTP(ctx, f.email, code)
	if err != nil {
		f.logger.Error("otp verify failed for flow %s: %v", f.id, err)
		return f.fail(msgGenericFailure, err)
	}

	f.clearError()
	f.tempToken = token

	return f.transition(StateActivatePassword)
}

// SetPassword finishes activation. The two inputs must match before any
// request is sent. Success discards the temporary token and returns to the
// login view; the user signs in with the new password manually, no session
// token is issued or persisted here.
func (f *Flow) SetPassword(ctx context.Context, newPassword, confirmPassword string) error {
	if f.state != StateActivatePassword {
		return f.stateError(StateActivatePassword)
	}

	if newPassword != confirmPassword {
		return f.fail("Passwords do not match.", ErrPasswordMismatch)
	}

	if err := validation.Validate(newPassword, validation.Required, validation.Length(8, 100)); err != nil {
		return f.fail(err.Error(), err)
	}

	if err := f.begin(); err != nil {
		return err
	}
	defer f.end()

	if err := f.api.SetPassword(ctx, f.tempToken, newPassword); err != nil {
		f.logger.Error("set password failed for flow %s: %v", f.id, err)
		return f.fail(msgGenericFailure, err)
	}

	f.clearError()
	f.logger.Info("activation completed for flow %s", f.id)

	return f.transition(StateLogin)
}

// transition moves the machine to target when the edge is allowed. Entering
// the login state discards any activation progress.
func (f *Flow) transition(target FlowState) error {
	allowed, ok := f.transitions[f.state]
	if !ok {
		return ErrInvalidTransition.WithMetadata(map[string]any{
			"from": f.state,
			"to":   target,
		})
	}

	if _, ok := allowed[target]; !ok {
		return ErrInvalidTransition.WithMetadata(map[string]any{
			"from": f.state,
			"to":   target,
		})
	}

	f.logger.Debug("flow %s transition %s -> %s", f.id, f.state, target)
	f.state = target

	if target == StateLogin {
		f.resetActivation()
	}

	return nil
}

func (f *Flow) resetActivation() {
	f.email = ""
	f.tempToken = ""
	f.otp.Clear()
}

func (f *Flow) stateError(want FlowState) error {
	return ErrInvalidTransition.WithMetadata(map[string]any{
		"state": f.state,
		"want":  want,
	})
}

func (f *Flow) begin() error {
	if f.busy {
		return ErrRequestInFlight
	}
	f.busy = true
	return nil
}

func (f *Flow) end() {
	f.busy = false
}

func (f *Flow) fail(message string, err error) error {
	f.errMsg = message

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		f.errMsg = apiErr.Detail
	}

	return err
}

func (f *Flow) clearError() {
	f.errMsg = ""
}
