package config

import "github.com/joho/godotenv"

func loadDotEnv(path string) error {
	return godotenv.Load(path)
}
