package service

import "lingvocards/internal/models"

type seedWord struct {
	term, translation, transcription, partOfSpeech, example string
}

type seedQuestion struct {
	term, answer string
	options      []string
	explanation  string
}

type seedTopic struct {
	topic     models.Topic
	words     []seedWord
	questions []seedQuestion
}

var defaultTopics = []seedTopic{
	{
		topic: models.Topic{ID: "work", Title: "Робота", Description: "Професійна лексика та офісне спілкування", Difficulty: models.DifficultyIntermediate, Icon: "💼"},
		words: []seedWord{
			{"Meeting", "Зустріч", "[ˈmiːtɪŋ]", "noun", "We have a meeting at 3 PM"},
			{"Deadline", "Дедлайн", "[ˈdedlaɪn]", "noun", "The deadline is tomorrow"},
			{"Project", "Проект", "[ˈprɒdʒekt]", "noun", "This project is very important"},
			{"Team", "Команда", "[tiːm]", "noun", "Our team works well together"},
			{"Report", "Звіт", "[rɪˈpɔːt]", "noun", "Please send me the report"},
		},
		questions: []seedQuestion{
			{"Meeting", "Зустріч", []string{"Зустріч", "Звіт", "Проект", "Команда"}, "Meeting означає зустріч або нараду"},
			{"Deadline", "Дедлайн", []string{"Початок", "Дедлайн", "Перерва", "Зустріч"}, "Deadline - це кінцевий термін виконання завдання"},
			{"Project", "Проект", []string{"Проект", "Процес", "Продукт", "Програма"}, "Project - це проект або план роботи"},
		},
	},
	{
		topic: models.Topic{ID: "travel", Title: "Подорожі", Description: "Словник для подорожей та туризму", Difficulty: models.DifficultyBeginner, Icon: "✈️"},
		words: []seedWord{
			{"Airport", "Аеропорт", "[ˈeəpɔːt]", "noun", "The airport is very busy"},
			{"Hotel", "Готель", "[həʊˈtel]", "noun", "We booked a nice hotel"},
			{"Passport", "Паспорт", "[ˈpɑːspɔːt]", "noun", "Don't forget your passport"},
		},
		questions: []seedQuestion{
			{"Airport", "Аеропорт", []string{"Аеропорт", "Автобус", "Готель", "Ресторан"}, ""},
			{"Hotel", "Готель", []string{"Хостел", "Готель", "Будинок", "Офіс"}, ""},
		},
	},
	{
		topic: models.Topic{ID: "food", Title: "Їжа", Description: "Кулінарна лексика та назви страв", Difficulty: models.DifficultyBeginner, Icon: "🍽️"},
		words: []seedWord{
			{"Bread", "Хліб", "[bred]", "noun", "I buy fresh bread every morning"},
			{"Soup", "Суп", "[suːp]", "noun", "This soup is too hot"},
			{"Breakfast", "Сніданок", "[ˈbrekfəst]", "noun", "Breakfast is ready"},
			{"Recipe", "Рецепт", "[ˈresəpi]", "noun", "Can you share the recipe?"},
		},
		questions: []seedQuestion{
			{"Bread", "Хліб", []string{"Сир", "Хліб", "Масло", "Суп"}, ""},
			{"Recipe", "Рецепт", []string{"Рецепт", "Рахунок", "Меню", "Страва"}, "Recipe - це інструкція з приготування страви"},
		},
	},
	{
		topic: models.Topic{ID: "family", Title: "Сім'я", Description: "Родинні стосунки та побутове спілкування", Difficulty: models.DifficultyBeginner, Icon: "👨‍👩‍👧‍👦"},
		words: []seedWord{
			{"Parents", "Батьки", "[ˈpeərənts]", "noun", "My parents live in Lviv"},
			{"Sister", "Сестра", "[ˈsɪstə]", "noun", "My sister is a doctor"},
			{"Grandfather", "Дідусь", "[ˈɡrænfɑːðə]", "noun", "My grandfather tells great stories"},
		},
		questions: []seedQuestion{
			{"Parents", "Батьки", []string{"Батьки", "Діти", "Сусіди", "Друзі"}, ""},
			{"Grandfather", "Дідусь", []string{"Бабуся", "Дядько", "Дідусь", "Онук"}, ""},
		},
	},
	{
		topic: models.Topic{ID: "technology", Title: "Технології", Description: "IT-термінологія та сучасні технології", Difficulty: models.DifficultyAdvanced, Icon: "💻"},
		words: []seedWord{
			{"Software", "Програмне забезпечення", "[ˈsɒftweə]", "noun", "We need to update the software"},
			{"Database", "База даних", "[ˈdeɪtəbeɪs]", "noun", "The database stores all orders"},
			{"Network", "Мережа", "[ˈnetwɜːk]", "noun", "The network is down"},
			{"Update", "Оновлення", "[ˈʌpdeɪt]", "noun", "Install the latest update"},
		},
		questions: []seedQuestion{
			{"Database", "База даних", []string{"Мережа", "База даних", "Сервер", "Файл"}, ""},
			{"Network", "Мережа", []string{"Мережа", "Пристрій", "Екран", "Пароль"}, "Network - це мережа, що з'єднує комп'ютери"},
		},
	},
	{
		topic: models.Topic{ID: "health", Title: "Здоров'я", Description: "Медична лексика та здоровий спосіб життя", Difficulty: models.DifficultyIntermediate, Icon: "🏥"},
		words: []seedWord{
			{"Doctor", "Лікар", "[ˈdɒktə]", "noun", "You should see a doctor"},
			{"Medicine", "Ліки", "[ˈmedsn]", "noun", "Take this medicine twice a day"},
			{"Headache", "Головний біль", "[ˈhedeɪk]", "noun", "I have a terrible headache"},
		},
		questions: []seedQuestion{
			{"Doctor", "Лікар", []string{"Медсестра", "Пацієнт", "Лікар", "Аптекар"}, ""},
			{"Headache", "Головний біль", []string{"Головний біль", "Нежить", "Кашель", "Температура"}, ""},
		},
	},
}
