package models

// UnclassifiedLabel marks a record that still needs a classification.
const UnclassifiedLabel = "No classification"

// GrandTotalLabel names the synthetic row summing every pivot group.
const GrandTotalLabel = "Grand Total"
