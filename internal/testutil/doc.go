// Package testutil contains helper builders and fakes used across tests to
// reduce boilerplate when constructing messages and conversations and when
// scripting agent behaviour. They are not intended for production usage.
package testutil
