package service

import "errors"

// ErrForbidden помечает ошибки доступа: пользователь аутентифицирован,
// но операция ему не принадлежит. Обработчики отвечают на неё 403.
var ErrForbidden = errors.New("доступ запрещён")
