// Copyright (c) 2020 Siemens AG
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
// the Software, and to permit persons to whom the Software is furnished to do so,
// subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
// FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
// COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
// IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
// CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
//
// Author(s): Jonas Plum

// Package store keeps decoded artifacts as JSON elements in a SQLite
// database. Every element has a type discriminator; on Close one view per
// element type is created that exposes the element fields as columns.
package store

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"crawshaw.io/sqlite"
	"github.com/fatih/structs"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"github.com/forensicanalysis/dtfabric/goflatten"
)

const storeVersion = 1
const applicationID = 1685349986
const discriminator = "type"

// ErrStoreExists is returned by New for an existing path.
var ErrStoreExists = errors.New("store already exists")

// ErrStoreNotExists is returned by Open for a missing path.
var ErrStoreNotExists = errors.New("store does not exist")

// ErrElementNotExists is returned by Get for an unknown id.
var ErrElementNotExists = errors.New("element does not exist")

// Store holds decoded elements.
type Store struct {
	conn  *sqlite.Conn
	types *typeMap
}

// New creates a new store. The url ":memory:" creates an in-memory store.
func New(url string) (*Store, error) {
	return open(url, true)
}

// Open opens an existing store.
func Open(url string) (*Store, error) {
	return open(url, false)
}

func pragma(conn *sqlite.Conn, name string) (int64, error) {
	stmt, err := conn.Prepare("PRAGMA " + name)
	if err != nil {
		return 0, err
	}
	_, err = stmt.Step()
	if err != nil {
		return 0, err
	}
	i := stmt.GetInt64(name)
	return i, stmt.Finalize()
}

func setPragma(conn *sqlite.Conn, name string, i int64) error {
	stmt, err := conn.Prepare("PRAGMA " + name + " = " + fmt.Sprint(i))
	if err != nil {
		return err
	}
	_, err = stmt.Step()
	if err != nil {
		return err
	}
	return stmt.Finalize()
}

func open(url string, create bool) (*Store, error) { // nolint:gocyclo,funlen
	if url != ":memory:" {
		url = strings.TrimRight(url, "/")

		exists := true
		_, err := os.Stat(url)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
			exists = false
		}

		if create && exists {
			return nil, errors.Wrap(ErrStoreExists, url)
		}
		if !create && !exists {
			return nil, errors.Wrap(ErrStoreNotExists, url)
		}

		if create {
			if err := os.MkdirAll(path.Dir(url), 0750); err != nil {
				return nil, err
			}
			log.Printf("Creating store %s", url)
		}
	}

	conn, err := sqlite.OpenConn(url, 0)
	if err != nil {
		return nil, errors.Wrap(err, "could not open database")
	}
	store := &Store{conn: conn, types: newTypeMap()}

	if create {
		if err := store.setup(); err != nil {
			conn.Close() // nolint:errcheck
			return nil, err
		}
	} else if err := store.check(); err != nil {
		conn.Close() // nolint:errcheck
		return nil, err
	}

	if err := store.setupTypes(); err != nil {
		conn.Close() // nolint:errcheck
		return nil, err
	}
	return store, nil
}

func (store *Store) setup() error {
	if err := setPragma(store.conn, "application_id", applicationID); err != nil {
		return err
	}
	if err := setPragma(store.conn, "user_version", storeVersion); err != nil {
		return err
	}
	return store.exec("CREATE VIRTUAL TABLE `elements` " +
		"USING fts5(id UNINDEXED, json, insert_time UNINDEXED, tokenize=\"unicode61 tokenchars '/.'\")")
}

func (store *Store) check() error {
	id, err := pragma(store.conn, "application_id")
	if err != nil {
		return err
	}
	if id != applicationID {
		return fmt.Errorf("wrong file format (application_id is %d, requires %d)", id, applicationID)
	}

	version, err := pragma(store.conn, "user_version")
	if err != nil {
		return err
	}
	if version != storeVersion {
		return fmt.Errorf("wrong file format (user_version is %d, requires %d)", version, storeVersion)
	}
	return nil
}

/* ################################
#   API
################################ */

// Insert validates and adds a single element. Elements without an id get
// one of the form <type>--<uuid>.
func (store *Store) Insert(element JSONElement) (string, error) {
	flaws, err := validateSchema(element)
	if err != nil {
		return "", errors.Wrap(err, "validation failed")
	}
	if len(flaws) > 0 {
		return "", fmt.Errorf("element could not be validated [%s]", strings.Join(flaws, ","))
	}

	nestedElement := map[string]interface{}{}
	if err := json.Unmarshal(element, &nestedElement); err != nil {
		return "", err
	}

	elementType := gjson.GetBytes(element, discriminator).String()
	if _, ok := nestedElement[elementType]; ok {
		return "", fmt.Errorf("element must not contain a field '%s'", elementType)
	}

	id := gjson.GetBytes(element, "id").String()
	if id == "" {
		id = elementType + "--" + uuid.New().String()
		nestedElement["id"] = id
		element, err = json.Marshal(nestedElement)
		if err != nil {
			return "", err
		}
	}

	store.types.addAll(elementType, goflatten.Keys(nestedElement))

	query := "INSERT INTO `elements` (id, json, insert_time) VALUES ($id, $json, $time)"
	stmt, err := store.conn.Prepare(query)
	if err != nil {
		return "", errors.Wrapf(err, "could not prepare statement %s", query)
	}
	stmt.SetText("$id", id)
	stmt.SetText("$json", string(element))
	stmt.SetText("$time", time.Now().UTC().Format("2006-01-02T15:04:05.000Z"))
	if _, err := stmt.Step(); err != nil {
		return "", errors.Wrapf(err, "could not exec statement %s", query)
	}
	return id, stmt.Reset()
}

// InsertBatch adds a set of elements in one transaction.
func (store *Store) InsertBatch(elements []JSONElement) (ids []string, err error) {
	if len(elements) == 0 {
		return nil, nil
	}
	if err := store.exec("BEGIN"); err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = store.exec("ROLLBACK")
			return
		}
		err = store.exec("COMMIT")
	}()

	for _, element := range elements {
		id, err := store.Insert(element)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// InsertStruct converts a Go struct to a map and inserts it. Field names
// become snake case keys, empty fields are omitted.
func (store *Store) InsertStruct(element interface{}) (string, error) {
	ids, err := store.InsertStructBatch([]interface{}{element})
	if err != nil {
		return "", err
	}
	return ids[0], nil
}

// InsertStructBatch adds a list of structs.
func (store *Store) InsertStructBatch(elements []interface{}) ([]string, error) {
	var ms []JSONElement
	for _, element := range elements {
		b, err := json.Marshal(StructMap(element))
		if err != nil {
			return nil, err
		}
		ms = append(ms, b)
	}
	return store.InsertBatch(ms)
}

// StructMap converts a struct into the map stored for it. Field names
// become snake case keys, empty fields are omitted.
func StructMap(element interface{}) map[string]interface{} {
	return lower(structs.Map(element)).(map[string]interface{})
}

// Get retrieves a single element.
func (store *Store) Get(id string) (JSONElement, error) {
	stmt, err := store.conn.Prepare("SELECT json FROM `elements` WHERE id = $id")
	if err != nil {
		return nil, err
	}
	stmt.SetText("$id", id)

	elements, err := store.rowsToElements(stmt)
	if err != nil {
		return nil, err
	}
	if len(elements) == 0 {
		return nil, errors.Wrap(ErrElementNotExists, id)
	}
	return elements[0], nil
}

// Query executes a sql query that returns a json column.
func (store *Store) Query(query string) ([]JSONElement, error) {
	stmt, err := store.conn.Prepare(query)
	if err != nil {
		return nil, err
	}
	return store.rowsToElements(stmt)
}

// Select retrieves the elements of a type. An element matches if it matches
// any of the conditions, where a condition maps fields to LIKE patterns that
// must all match. No conditions select every element of the type.
func (store *Store) Select(elementType string, conditions []map[string]string) ([]JSONElement, error) {
	var ors []string
	var values []string
	for _, condition := range conditions {
		fields := make([]string, 0, len(condition))
		for field := range condition {
			fields = append(fields, field)
		}
		sort.Strings(fields)

		var ands []string
		for _, field := range fields {
			ands = append(ands, fmt.Sprintf("json_extract(json, '$.%s') LIKE ?", escapeField(field)))
			values = append(values, condition[field])
		}
		if len(ands) > 0 {
			ors = append(ors, "("+strings.Join(ands, " AND ")+")")
		}
	}

	query := "SELECT json FROM `elements` WHERE json_extract(json, '$." + discriminator + "') = ?"
	if len(ors) > 0 {
		query += " AND (" + strings.Join(ors, " OR ") + ")"
	}
	stmt, err := store.conn.Prepare(query)
	if err != nil {
		return nil, err
	}
	stmt.BindText(1, elementType)
	for i, value := range values {
		stmt.BindText(i+2, value)
	}
	return store.rowsToElements(stmt)
}

// Search runs a full text query over all elements.
func (store *Store) Search(q string) ([]JSONElement, error) {
	stmt, err := store.conn.Prepare("SELECT json FROM `elements` WHERE elements = $query")
	if err != nil {
		return nil, err
	}
	stmt.SetText("$query", q)
	return store.rowsToElements(stmt)
}

// All returns every element.
func (store *Store) All() ([]JSONElement, error) {
	return store.Query("SELECT json FROM `elements`")
}

// Validate checks all stored elements against their schemas.
func (store *Store) Validate() (flaws []string, err error) {
	flaws = []string{}
	elements, err := store.All()
	if err != nil {
		return nil, err
	}
	for _, element := range elements {
		elementFlaws, err := validateSchema(element)
		if err != nil {
			return nil, err
		}
		id := gjson.GetBytes(element, "id").String()
		for _, flaw := range elementFlaws {
			flaws = append(flaws, id+": "+flaw)
		}
	}
	return flaws, nil
}

// Close creates the element views if new fields were inserted and closes
// the database.
func (store *Store) Close() error {
	if store.types.changed {
		if err := store.createViews(); err != nil {
			store.conn.Close() // nolint:errcheck
			return errors.Wrap(err, "could not create views")
		}
	}
	return store.conn.Close()
}

func (store *Store) createViews() error {
	for typeName, fields := range store.types.all() {
		if err := store.exec(fmt.Sprintf("DROP VIEW IF EXISTS '%s'", typeName)); err != nil {
			return err
		}
		columns := make([]string, 0, len(fields))
		for _, field := range fields {
			columns = append(columns, fmt.Sprintf("json_extract(json, '$.%s') as '%s'", escapeField(field), field))
		}
		err := store.exec(fmt.Sprintf(
			"CREATE VIEW '%s' AS SELECT %s FROM elements WHERE json_extract(json, '$.%s') = '%s'",
			typeName, strings.Join(columns, ", "), discriminator, typeName,
		))
		if err != nil {
			return err
		}
	}
	return nil
}

/* ################################
#   Intern
################################ */

func (store *Store) rowsToElements(stmt *sqlite.Stmt) (elements []JSONElement, err error) {
	elements = []JSONElement{}
	for {
		if hasRow, err := stmt.Step(); err != nil {
			return nil, err
		} else if !hasRow {
			break
		}
		elements = append(elements, JSONElement(stmt.GetText("json")))
	}
	return elements, stmt.Finalize()
}

func isElementView(name string) bool {
	if strings.HasPrefix(name, "sqlite") || strings.HasPrefix(name, "_") {
		return false
	}
	if name == "elements" {
		return false
	}
	for _, suffix := range []string{"_data", "_idx", "_content", "_docsize", "_config"} {
		if strings.HasSuffix(name, suffix) {
			return false
		}
	}
	return true
}

// setupTypes restores the known fields from the existing views.
func (store *Store) setupTypes() error {
	stmt, err := store.conn.Prepare("SELECT name FROM sqlite_master WHERE type = 'view'")
	if err != nil {
		return err
	}
	var names []string
	for {
		if hasRow, err := stmt.Step(); err != nil {
			return err
		} else if !hasRow {
			break
		}
		if name := stmt.GetText("name"); isElementView(name) {
			names = append(names, name)
		}
	}
	if err := stmt.Finalize(); err != nil {
		return err
	}

	for _, name := range names {
		pragmaStmt, err := store.conn.Prepare(fmt.Sprintf("PRAGMA table_info ('%s')", name))
		if err != nil {
			return err
		}
		for {
			if hasRow, err := pragmaStmt.Step(); err != nil {
				return err
			} else if !hasRow {
				break
			}
			store.types.restore(name, pragmaStmt.GetText("name"))
		}
		if err := pragmaStmt.Finalize(); err != nil {
			return err
		}
	}
	return nil
}

func (store *Store) exec(query string) error {
	stmt, err := store.conn.Prepare(query)
	if err != nil {
		return err
	}
	if _, err = stmt.Step(); err != nil {
		return err
	}
	return stmt.Finalize()
}

func escapeField(field string) string {
	return strings.ReplaceAll(field, "'", "''")
}
