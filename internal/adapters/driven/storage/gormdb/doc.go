// Package gormdb stores tokens, the mirror and principal links in PostgreSQL
// or MySQL through GORM. It is selected with database.driver = postgres|mysql
// and implements the same store interfaces as the sqlite package.
package gormdb
