// Package config provides typed lookups over environment variables for
// provider credentials and endpoints. Required values are fetched with
// [Expect], which fails before any network call is made; optional values use
// [Get] and friends with explicit defaults. A .env file in the working
// directory is loaded automatically via godotenv.
package config
