package configlibsql

import (
	"database/sql"
	"fmt"
	"net/url"

	"teetimes-backend/pkg/migrations"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

type Struct struct {
	File      string `json:"file"`
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

// opens a local sqlite file when only `file` is set, otherwise
// connects to the remote libsql database at `url`
func (config Struct) OpenDB() (*sql.DB, error) {
	if config.Url == "" {
		if config.File == "" {
			return nil, fmt.Errorf("a database file or url must be specified")
		}
		return migrations.OpenDB(config.File)
	}

	values := url.Values{}
	if config.AuthToken != "" {
		values.Add("authToken", config.AuthToken)
	}
	db, err := sql.Open("libsql", config.Url+"?"+values.Encode())
	if err != nil {
		return nil, err
	}
	return db, nil
}
