package service

import "errors"

var (
	ErrTaskNotFound       = errors.New("данные не найдены")
	ErrEmployeeNotFound   = errors.New("сотрудник не найден")
	ErrAttachmentRequired = errors.New("необходимо прикрепить файл")
	ErrInvalidTask        = errors.New("некорректный интервал")
	ErrSelfFollow         = errors.New("нельзя подписаться на самого себя")
)
