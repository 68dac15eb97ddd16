package component

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeComp struct {
	name    string
	initErr error
	inits   int
	stmts   []string
}

func (f *fakeComp) Name() string         { return f.name }
func (f *fakeComp) Migrations() []string { return f.stmts }

func (f *fakeComp) Init(*Env) error {
	f.inits++
	return f.initErr
}

func (f *fakeComp) Routes(*Env) chi.Router {
	r := chi.NewRouter()
	r.Get("/"+f.name, func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(f.name)) })
	r.Post("/"+f.name, func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusAccepted) })
	return r
}

func TestBoot_MountsAllAtRoot(t *testing.T) {
	a, b := &fakeComp{name: "alpha"}, &fakeComp{name: "beta"}
	r := chi.NewRouter()
	require.NoError(t, boot(context.Background(), r, &Env{Log: zap.NewNop()}, []Component{a, b}))
	require.Equal(t, 1, a.inits)
	require.Equal(t, 1, b.inits)

	for _, name := range []string{"alpha", "beta"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/"+name, nil))
		require.Equal(t, name, rec.Body.String())

		rec = httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/"+name, nil))
		require.Equal(t, http.StatusAccepted, rec.Code)
	}
}

func TestBoot_InitErrorStops(t *testing.T) {
	a := &fakeComp{name: "alpha", initErr: errors.New("no store")}
	b := &fakeComp{name: "beta"}
	err := boot(context.Background(), chi.NewRouter(), &Env{}, []Component{a, b})
	require.ErrorContains(t, err, "component alpha: init: no store")
	require.Zero(t, b.inits)
}

func TestBoot_RunsMigrationsWithDB(t *testing.T) {
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer raw.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS schema_migrations")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(step), -1)")).
		WithArgs("alpha").
		WillReturnRows(sqlmock.NewRows([]string{"step"}).AddRow(0))

	a := &fakeComp{name: "alpha", stmts: []string{"CREATE TABLE IF NOT EXISTS alpha (id INT)"}}
	env := &Env{DB: sqlx.NewDb(raw, "mysql")}
	require.NoError(t, boot(context.Background(), chi.NewRouter(), env, []Component{a}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_SortedAndUnique(t *testing.T) {
	z, y := &fakeComp{name: "zz-test"}, &fakeComp{name: "yy-test"}
	Register(z)
	Register(y)
	Register(z)
	t.Cleanup(func() {
		unregister("zz-test")
		unregister("yy-test")
	})

	var names []string
	for _, c := range All() {
		names = append(names, c.Name())
	}
	require.Subset(t, names, []string{"yy-test", "zz-test"})
	require.Less(t, indexOf(names, "yy-test"), indexOf(names, "zz-test"))

	require.Panics(t, func() { Register(&fakeComp{name: "zz-test"}) })
}

func indexOf(s []string, v string) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}
