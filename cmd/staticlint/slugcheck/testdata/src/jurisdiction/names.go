package jurisdiction

var name = "Baltimore City"
