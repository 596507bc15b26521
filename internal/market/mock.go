package market

// Mock is the starter catalog shown before any listing has been saved.
func Mock() []Product {
	return []Product{
		{
			ID:          "1",
			SellerID:    "seller123",
			SellerName:  "Organic Farms Co.",
			Name:        "Organic Tomatoes",
			Category:    Vegetables,
			Price:       45,
			Quantity:    "100 kg",
			Description: "Fresh organic tomatoes from our greenhouse",
			State:       "Maharashtra",
			Contact:     "9876543210",
			Image:       "https://images.unsplash.com/photo-1592841200221-a6896f81b5b1?auto=format&fit=crop&w=500&q=60",
			PostedOn:    "2023-05-15",
		},
		{
			ID:          "2",
			SellerID:    "seller456",
			SellerName:  "Grain Masters",
			Name:        "Basmati Rice",
			Category:    Grains,
			Price:       85,
			Quantity:    "500 kg",
			Description: "Premium quality basmati rice, freshly harvested",
			State:       "Punjab",
			Contact:     "8765432109",
			Image:       "https://images.unsplash.com/photo-1601050690597-df0568f70950?auto=format&fit=crop&w=500&q=60",
			PostedOn:    "2023-05-10",
		},
		{
			ID:          "3",
			SellerID:    "seller789",
			SellerName:  "Konkan Orchards",
			Name:        "Alphonso Mangoes",
			Category:    Fruits,
			Price:       600,
			Quantity:    "50 dozen",
			Description: "GI-tagged Ratnagiri alphonso, naturally ripened",
			State:       "Maharashtra",
			Contact:     "7654321098",
			PostedOn:    "2023-05-12",
		},
		{
			ID:          "4",
			SellerID:    "seller321",
			SellerName:  "Anand Dairy Collective",
			Name:        "Fresh Buffalo Milk",
			Category:    Dairy,
			Price:       60,
			Quantity:    "200 liters/day",
			Description: "Chilled buffalo milk collected every morning",
			State:       "Gujarat",
			Contact:     "6543210987",
			PostedOn:    "2023-05-14",
		},
		{
			ID:          "5",
			SellerID:    "seller654",
			SellerName:  "Kisan Machinery",
			Name:        "Used Power Tiller",
			Category:    Equipment,
			Price:       8500,
			Quantity:    "1 unit",
			Description: "12 HP diesel tiller, serviced, rent per season",
			State:       "Karnataka",
			Contact:     "5432109876",
			PostedOn:    "2023-05-08",
		},
	}
}
