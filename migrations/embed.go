// Package migrations вшивает SQL миграции в бинарник, чтобы деплой
// не зависел от рабочего каталога и внешних файлов.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
