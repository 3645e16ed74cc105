package services

import (
	"github.com/gotd/td/tg"

	"telegram-cleaner/internal/domain"
)

// Classify относит сущность диалога к одному из закрытых вариантов.
// Функция чистая и тотальная: для любого входа, включая nil и типы,
// неизвестные этому инструменту, возвращается ровно один вариант.
func Classify(entity any) domain.Variant {
	switch entity.(type) {
	case *tg.Channel:
		// Каналы и супергруппы структурно один тип платформы,
		// выход из них выполняется одной и той же операцией.
		return domain.VariantBroadcast
	case *tg.Chat:
		return domain.VariantLegacyGroup
	case *tg.User:
		// Человек или бот — в обоих случаях переписка очищается
		// удалением истории.
		return domain.VariantDirectOrBot
	default:
		// Сюда попадают ChatForbidden, ChannelForbidden, пустые
		// сущности и все, что платформа добавит в будущем.
		return domain.VariantUnknown
	}
}
