package domain

var Tables = []interface{}{
	// Catalog
	&Category{},
	&Product{},
	// Accounts
	&User{},
	// Cart
	&Cart{},
	&CartItem{},
	// Order
	&Order{},
	&OrderItem{},
	&OrderTaskLog{},
}
