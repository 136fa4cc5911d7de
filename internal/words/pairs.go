package words

import "github.com/KirkDiggler/blacksheep/internal/models"

// DefaultPairs is the built-in word pool. Categories are unique.
var DefaultPairs = []models.WordPair{
	{Category: "fruit", Main: "Apple", Imposter: "Pear"},
	{Category: "drinks", Main: "Coffee", Imposter: "Tea"},
	{Category: "pets", Main: "Cat", Imposter: "Dog"},
	{Category: "furniture", Main: "Chair", Imposter: "Stool"},
	{Category: "weather", Main: "Rain", Imposter: "Snow"},
	{Category: "vehicles", Main: "Car", Imposter: "Truck"},
	{Category: "music", Main: "Guitar", Imposter: "Violin"},
	{Category: "sports", Main: "Football", Imposter: "Rugby"},
	{Category: "seasons", Main: "Summer", Imposter: "Spring"},
	{Category: "buildings", Main: "Castle", Imposter: "Palace"},
	{Category: "ocean", Main: "Shark", Imposter: "Dolphin"},
	{Category: "breakfast", Main: "Pancake", Imposter: "Waffle"},
	{Category: "desserts", Main: "Cake", Imposter: "Pie"},
	{Category: "footwear", Main: "Boots", Imposter: "Sneakers"},
	{Category: "space", Main: "Moon", Imposter: "Sun"},
	{Category: "kitchen", Main: "Fork", Imposter: "Spoon"},
	{Category: "jobs", Main: "Doctor", Imposter: "Nurse"},
	{Category: "stationery", Main: "Pen", Imposter: "Pencil"},
	{Category: "landscape", Main: "Mountain", Imposter: "Hill"},
	{Category: "water", Main: "River", Imposter: "Lake"},
	{Category: "birds", Main: "Eagle", Imposter: "Hawk"},
	{Category: "insects", Main: "Bee", Imposter: "Wasp"},
	{Category: "fast food", Main: "Burger", Imposter: "Sandwich"},
	{Category: "italian food", Main: "Pizza", Imposter: "Pasta"},
	{Category: "cinema", Main: "Movie", Imposter: "Series"},
	{Category: "reading", Main: "Book", Imposter: "Magazine"},
	{Category: "beach", Main: "Sand", Imposter: "Shell"},
	{Category: "holidays", Main: "Christmas", Imposter: "Easter"},
	{Category: "clothing", Main: "Jacket", Imposter: "Sweater"},
	{Category: "vegetables", Main: "Carrot", Imposter: "Potato"},
	{Category: "games", Main: "Chess", Imposter: "Checkers"},
	{Category: "tools", Main: "Hammer", Imposter: "Wrench"},
	{Category: "jewelry", Main: "Ring", Imposter: "Necklace"},
	{Category: "travel", Main: "Airport", Imposter: "Train Station"},
	{Category: "school", Main: "Teacher", Imposter: "Principal"},
	{Category: "fairy tales", Main: "Dragon", Imposter: "Dinosaur"},
}
