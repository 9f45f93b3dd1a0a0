package sync

import "errors"

var (
	// ErrRecordNotFound — запись с таким внешним идентификатором
	// в локальной копии отсутствует
	ErrRecordNotFound = errors.New("record not found")
	// ErrStoreNotFound — магазин не зарегистрирован
	ErrStoreNotFound = errors.New("store not found")
	// ErrStoreExists — магазин с таким идентификатором уже есть
	ErrStoreExists = errors.New("store already exists")
	// ErrEmptyStoreID — запрос без идентификатора магазина
	ErrEmptyStoreID = errors.New("store id is empty")
	// ErrMissingCredentials — не переданы учетные данные платформы
	ErrMissingCredentials = errors.New("platform credentials are missing")
)
