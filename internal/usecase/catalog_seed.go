package usecase

import "github.com/polkiloo/petshop/internal/domain/model"

const seedImage = "/placeholder.svg?height=300&width=300"

func tag(s string) *string { return &s }

// seedProducts is the starter catalog inserted into an empty store.
var seedProducts = []model.Product{
	{Name: "Tropical Fish Food Flakes", Price: 249.99, Tag: tag("Bestseller"), Category: "fish", Rating: 4.8,
		Description: "Premium quality flakes for all tropical fish. Rich in nutrients and enhances color."},
	{Name: "Aquarium Filter System", Price: 1299.99, Tag: tag("New"), Category: "fish", Rating: 4.5,
		Description: "Advanced 3-stage filtration system for crystal clear water. Suitable for tanks up to 100 liters."},
	{Name: "LED Aquarium Light", Price: 899.99, Category: "fish", Rating: 4.7,
		Description: "Full spectrum LED light with day/night modes. Promotes plant growth and enhances fish colors."},
	{Name: "Aquarium Decorative Plants", Price: 349.99, Category: "fish", Rating: 4.3,
		Description: "Set of 5 realistic artificial plants. Safe for all fish and creates natural hiding spots."},

	{Name: "Premium Bird Seed Mix", Price: 199.99, Tag: tag("Organic"), Category: "birds", Rating: 4.9,
		Description: "Nutritious blend of seeds, nuts, and dried fruits. Perfect for parakeets, canaries, and finches."},
	{Name: "Bird Cage Deluxe", Price: 2499.99, Category: "birds", Rating: 4.6,
		Description: "Spacious cage with multiple perches, feeding stations, and play areas. Easy to clean."},
	{Name: "Bird Toys Variety Pack", Price: 349.99, Tag: tag("Sale"), Category: "birds", Rating: 4.4,
		Description: "Set of 10 colorful toys to keep your birds entertained. Includes bells, ladders, and swings."},
	{Name: "Bird Bath Fountain", Price: 599.99, Category: "birds", Rating: 4.2,
		Description: "Automatic fountain with clean water circulation. Encourages birds to bathe regularly."},

	{Name: "Premium Dry Dog Food", Price: 899.99, Tag: tag("Grain-Free"), Category: "dogs", Rating: 4.8,
		Description: "High-protein formula with real meat as the first ingredient. No artificial preservatives."},
	{Name: "Orthopedic Dog Bed", Price: 1499.99, Category: "dogs", Rating: 4.7,
		Description: "Memory foam bed that provides joint support. Removable, machine-washable cover."},
	{Name: "Interactive Dog Toy", Price: 399.99, Tag: tag("Bestseller"), Category: "dogs", Rating: 4.5,
		Description: "Treat-dispensing toy that challenges your dog mentally. Adjustable difficulty levels."},
	{Name: "Reflective Dog Collar", Price: 249.99, Category: "dogs", Rating: 4.6,
		Description: "Durable nylon collar with reflective stitching for night visibility. Adjustable size."},
}
