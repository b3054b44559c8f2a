package bankapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/bxcodec/faker/v3"
	"github.com/stretchr/testify/assert"
	"gopkg.in/h2non/gock.v1"

	"github.com/evgeny-myasishchev/vault.banking/pkg/lib-core-golang/request"
)

func randomBaseURL() string {
	return "https://bank-" + faker.Word() + ".example.com"
}

func Test_API_CurrentUser(t *testing.T) {
	defer gock.Off()
	type fields struct {
		baseURL string
		session string
	}
	type testCase struct {
		fields fields
		want   *UserDTO
	}
	type tcFn func() (string, func(*testing.T) *testCase)
	tests := []tcFn{
		func() (string, func(*testing.T) *testCase) {
			return "get current user", func(t *testing.T) *testCase {
				want := &UserDTO{
					Username: faker.Username(),
					Name:     faker.Name(),
					Accounts: []AccountDTO{
						{ID: "acc-1-" + faker.Word(), Type: "Private Account", IBAN: "CH93" + faker.UUIDDigit()[:17], Balance: "1000.00", Currency: "CHF"},
						{ID: "acc-2-" + faker.Word(), Type: "Savings Account", IBAN: "CH93" + faker.UUIDDigit()[:17], Balance: "5.50", Currency: "CHF"},
					},
					Transactions: []TransactionDTO{
						{
							ID:        faker.UUIDHyphenated(),
							AccountID: "acc-1-" + faker.Word(),
							Type:      "outgoing",
							Amount:    "100.00",
							Fee:       "12.00",
							Date:      time.Now().UTC().Truncate(time.Second),
						},
					},
				}
				fields := fields{baseURL: randomBaseURL(), session: "sess-" + faker.UUIDDigit()}
				gock.New(fields.baseURL).
					Get("/api/user").
					MatchHeader("Cookie", SessionCookieName+"="+fields.session).
					Reply(200).
					JSON(want)
				return &testCase{fields: fields, want: want}
			}
		},
	}
	for _, tt := range tests {
		name, tt := tt()
		t.Run(name, func(t *testing.T) {
			tt := tt(t)
			a := API(&api{baseURL: tt.fields.baseURL, session: tt.fields.session})
			got, err := a.CurrentUser(context.TODO())
			if !assert.NoError(t, err) {
				return
			}
			assert.Equal(t, tt.want, got)
			assert.True(t, gock.IsDone())
		})
	}
}

func Test_API_Transfer(t *testing.T) {
	defer gock.Off()
	type testCase struct {
		name string
		run  func(t *testing.T)
	}
	tests := []func() testCase{
		func() testCase {
			return testCase{
				name: "submit transfer",
				run: func(t *testing.T) {
					a := &api{baseURL: randomBaseURL(), session: "sess-" + faker.UUIDDigit()}
					trx := TransferRequest{
						SourceAccountID: "acc-" + faker.Word(),
						RecipientIBAN:   "CH9300762011623852957",
						RecipientName:   faker.Name(),
						Amount:          json.Number("100.50"),
						Reference:       faker.Sentence(),
					}
					want := &TransferResult{
						Success: true,
						Transaction: TransactionDTO{
							ID:               faker.UUIDHyphenated(),
							AccountID:        trx.SourceAccountID,
							Type:             "outgoing",
							Amount:           "100.50",
							Fee:              "12.00",
							CounterpartyName: trx.RecipientName,
							CounterpartyIBAN: trx.RecipientIBAN,
							Reference:        trx.Reference,
							Date:             time.Now().UTC().Truncate(time.Second),
						},
					}
					gock.New(a.baseURL).
						Post("/api/transfers").
						MatchHeader("Cookie", SessionCookieName+"="+a.session).
						MatchType("json").
						JSON(trx).
						Reply(200).
						JSON(want)

					got, err := a.Transfer(context.TODO(), trx)
					if !assert.NoError(t, err) {
						return
					}
					assert.Equal(t, want, got)
					assert.True(t, gock.IsDone())
				},
			}
		},
		func() testCase {
			return testCase{
				name: "insufficient funds",
				run: func(t *testing.T) {
					a := &api{baseURL: randomBaseURL(), session: "sess-" + faker.UUIDDigit()}
					gock.New(a.baseURL).
						Post("/api/transfers").
						Reply(http.StatusUnprocessableEntity).
						JSON(map[string]interface{}{"statusCode": 422, "error": "Unprocessable Entity", "message": "Insufficient funds"})

					_, err := a.Transfer(context.TODO(), TransferRequest{Amount: "1"})
					var httpErr request.HTTPError
					if !assert.ErrorAs(t, err, &httpErr) {
						return
					}
					assert.Equal(t, http.StatusUnprocessableEntity, httpErr.StatusCode)
					assert.Contains(t, httpErr.Body, "Insufficient funds")
				},
			}
		},
	}
	for _, ttFn := range tests {
		tt := ttFn()
		t.Run(tt.name, tt.run)
	}
}

func Test_API_Logout(t *testing.T) {
	defer gock.Off()
	a := &api{baseURL: randomBaseURL(), session: "sess-" + faker.UUIDDigit()}
	gock.New(a.baseURL).
		Post("/api/auth/logout").
		MatchHeader("Cookie", SessionCookieName+"="+a.session).
		Reply(200).
		JSON(map[string]bool{"success": true})
	assert.NoError(t, a.Logout(context.TODO()))
	assert.True(t, gock.IsDone())
}

func TestNewAPI(t *testing.T) {
	defer gock.Off()
	type args struct {
		baseURL  string
		username string
		password string
	}
	type testCase struct {
		args   args
		assert func(t *testing.T, got API, err error)
	}
	type tcFn func(*testing.T) testCase
	newArgs := func() args {
		return args{
			baseURL:  randomBaseURL(),
			username: faker.Username(),
			password: faker.Password(),
		}
	}
	tests := []func() (string, tcFn){
		func() (string, tcFn) {
			return "login and return new api", func(t *testing.T) testCase {
				args := newArgs()
				session := "sess-" + faker.UUIDDigit()
				gock.New(args.baseURL).
					Post("/api/auth/login").
					JSON(map[string]string{
						"username": args.username,
						"password": args.password,
					}).
					Reply(200).
					AddHeader("Set-Cookie", SessionCookieName+"="+session+"; Path=/; HttpOnly").
					JSON(map[string]interface{}{"success": true})
				return testCase{
					args: args,
					assert: func(t *testing.T, got API, err error) {
						if !assert.NoError(t, err) {
							return
						}
						assert.Equal(t, API(&api{baseURL: args.baseURL, session: session}), got)
					},
				}
			}
		},
		func() (string, tcFn) {
			return "fail on invalid credentials", func(t *testing.T) testCase {
				args := newArgs()
				gock.New(args.baseURL).
					Post("/api/auth/login").
					Reply(http.StatusUnauthorized).
					JSON(map[string]interface{}{"message": "Invalid credentials"})
				return testCase{
					args: args,
					assert: func(t *testing.T, got API, err error) {
						var httpErr request.HTTPError
						if assert.ErrorAs(t, err, &httpErr) {
							assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)
						}
						assert.Nil(t, got)
					},
				}
			}
		},
		func() (string, tcFn) {
			return "fail if no session", func(t *testing.T) testCase {
				args := newArgs()
				gock.New(args.baseURL).
					Post("/api/auth/login").
					Reply(200).
					JSON(map[string]interface{}{"success": true})
				return testCase{
					args: args,
					assert: func(t *testing.T, got API, err error) {
						assert.Equal(t, ErrNoSession, err)
						assert.Nil(t, got)
					},
				}
			}
		},
	}
	for _, tt := range tests {
		name, tt := tt()
		t.Run(name, func(t *testing.T) {
			tt := tt(t)
			got, err := NewAPI(context.TODO(), tt.args.baseURL, tt.args.username, tt.args.password)
			tt.assert(t, got, err)
			assert.True(t, gock.IsDone())
		})
	}
}
