// Package domain define los tipos de negocio de sessiond.
//
// Estos tipos son independientes del almacenamiento subyacente
// (memoria, PostgreSQL). Las implementaciones concretas del store
// viven en internal/store.
//
// Convenciones:
//   - Context siempre es el primer parámetro en interfaces.
//   - Errores de dominio están en errors.go.
package domain
