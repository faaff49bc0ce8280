package catalog

// DefaultProducts is the starter catalogue written on first boot.
func DefaultProducts() []Product {
	return []Product{
		{ID: "1", Name: "Laptop ASUS ROG Strix", Price: 15000000, Category: "Elektronik", Stock: 15,
			Description: "Laptop gaming high performance dengan processor Intel i7 dan GPU RTX 4060",
			Image:       "https://images.unsplash.com/photo-1496181133206-80ce9b88a853?w=500"},
		{ID: "2", Name: "Smartphone Samsung Galaxy S24", Price: 12000000, Category: "Elektronik", Stock: 25,
			Description: "Smartphone flagship dengan kamera 200MP dan layar AMOLED 120Hz",
			Image:       "https://images.unsplash.com/photo-1511707171634-5f897ff02aa9?w=500"},
		{ID: "3", Name: "Sepatu Nike Air Max", Price: 1500000, Category: "Fashion", Stock: 50,
			Description: "Sepatu olahraga dengan teknologi Air Max untuk kenyamanan maksimal",
			Image:       "https://images.unsplash.com/photo-1542291026-7eec264c27ff?w=500"},
		{ID: "4", Name: "Kemeja Formal Pria", Price: 350000, Category: "Fashion", Stock: 30,
			Description: "Kemeja formal berbahan katun premium, cocok untuk acara resmi",
			Image:       "https://images.unsplash.com/photo-1596755094514-f87e34085b2c?w=500"},
		{ID: "5", Name: "Headphone Sony WH-1000XM5", Price: 4500000, Category: "Elektronik", Stock: 20,
			Description: "Headphone wireless dengan noise cancelling terbaik di kelasnya",
			Image:       "https://images.unsplash.com/photo-1505740420928-5e560c06d30e?w=500"},
		{ID: "6", Name: "Tas Ransel Backpack", Price: 450000, Category: "Aksesoris", Stock: 40,
			Description: "Tas ransel multifungsi dengan kompartemen laptop hingga 15 inci",
			Image:       "https://images.unsplash.com/photo-1553062407-98eeb64c6a62?w=500"},
		{ID: "7", Name: "Jam Tangan Smartwatch", Price: 2500000, Category: "Elektronik", Stock: 18,
			Description: "Smartwatch dengan fitur kesehatan lengkap dan baterai tahan lama",
			Image:       "https://images.unsplash.com/photo-1523275335684-37898b6baf30?w=500"},
		{ID: "8", Name: "Kamera Canon EOS R6", Price: 35000000, Category: "Elektronik", Stock: 8,
			Description: "Kamera mirrorless full-frame untuk fotografer profesional",
			Image:       "https://images.unsplash.com/photo-1516035069371-29a1b244cc32?w=500"},
	}
}
